package types

import (
	"time"

	"github.com/moznion/go-optional"
)

type MarkShape string

const (
	MarkShapeCircle   MarkShape = "circle"
	MarkShapeSquare   MarkShape = "square"
	MarkShapeTriangle MarkShape = "triangle"
)

type MarkColor string

const (
	MarkColorRed    MarkColor = "red"
	MarkColorGreen  MarkColor = "green"
	MarkColorYellow MarkColor = "yellow"
)

type MarkCategory string

const (
	MarkCategoryDecision MarkCategory = "decision"
	MarkCategoryStale    MarkCategory = "stale"
	MarkCategoryFill     MarkCategory = "fill"
	MarkCategoryCancel   MarkCategory = "cancel"
	MarkCategorySkip     MarkCategory = "skip"
)

// Mark annotates a bar with something the driver did on it. A run's marks
// form its decision journal.
type Mark struct {
	BarTime  time.Time                 `yaml:"bar_time" json:"bar_time"`
	Color    MarkColor                 `yaml:"color" json:"color"`
	Shape    MarkShape                 `yaml:"shape" json:"shape"`
	Title    string                    `yaml:"title" json:"title"`
	Message  string                    `yaml:"message" json:"message"`
	Category MarkCategory              `yaml:"category" json:"category"`
	Decision optional.Option[Decision] `yaml:"decision" json:"decision"`
}
