package models

import "fmt"

// Point is a position on the simulated market plane, in metres.
type Point struct {
	X int `json:"x" parquet:"name=x, type=INT32"`
	Y int `json:"y" parquet:"name=y, type=INT32"`
}

func (p Point) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}
