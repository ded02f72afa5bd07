package vine

import "fmt"

// Pos is a block position in world coordinates.
type Pos struct {
	X int `yaml:"x" json:"x"`
	Y int `yaml:"y" json:"y"`
	Z int `yaml:"z" json:"z"`
}

// Direction is one of the six axis-aligned neighbor directions.
type Direction int

const (
	Down Direction = iota
	Up
	North
	South
	West
	East
)

// Directions lists all six neighbor directions.
var Directions = []Direction{Down, Up, North, South, West, East}

var directionNames = [...]string{"down", "up", "north", "south", "west", "east"}

func (d Direction) String() string {
	if d < 0 || int(d) >= len(directionNames) {
		return fmt.Sprintf("direction(%d)", int(d))
	}
	return directionNames[d]
}

// Offset returns the position one step from p in direction d.
func (p Pos) Offset(d Direction) Pos {
	switch d {
	case Down:
		return Pos{p.X, p.Y - 1, p.Z}
	case Up:
		return Pos{p.X, p.Y + 1, p.Z}
	case North:
		return Pos{p.X, p.Y, p.Z - 1}
	case South:
		return Pos{p.X, p.Y, p.Z + 1}
	case West:
		return Pos{p.X - 1, p.Y, p.Z}
	case East:
		return Pos{p.X + 1, p.Y, p.Z}
	}
	return p
}

// Neighbors returns the six face-adjacent positions in Directions order.
func (p Pos) Neighbors() [6]Pos {
	var out [6]Pos
	for i, d := range Directions {
		out[i] = p.Offset(d)
	}
	return out
}

func (p Pos) String() string {
	return fmt.Sprintf("(%d, %d, %d)", p.X, p.Y, p.Z)
}
