package utils

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
)

// NewID returns a process-wide unique string identifier.
func NewID() string {
	return uuid.NewString()
}

// Table color palette offered by the canvas.
var tableColors = []string{
	"#ff6b8a", "#8eb7ff", "#ffe374", "#9ef07a",
	"#b067e9", "#ff9f74", "#7dd3dc", "#bababa",
}

func RandomColor() string {
	return tableColors[rand.Intn(len(tableColors))]
}

// DefaultName produces names like table_1, field_3, index_2 from the
// current entity count.
func DefaultName(prefix string, count int) string {
	return fmt.Sprintf("%s_%d", prefix, count+1)
}

func Contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
