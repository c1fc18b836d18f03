// Package output serializes resolved injection points for downstream
// consumers (variant generators, dashboards).
package output

import (
	"encoding/json"
	"io"
	"os"

	"github.com/Simon-Bruno/omen-backend-sub000/pkg/models"
)

// WriteJSON writes injection points as indented JSON to path, or to stdout
// when path is empty.
func WriteJSON(points []*models.InjectionPoint, path string) error {
	if path == "" {
		return WriteJSONTo(os.Stdout, points)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := WriteJSONTo(f, points); err != nil {
		return err
	}
	return f.Close()
}

// WriteJSONTo writes injection points to an arbitrary writer. A nil slice is
// serialized as an empty array: no result is still a result.
func WriteJSONTo(w io.Writer, points []*models.InjectionPoint) error {
	if points == nil {
		points = []*models.InjectionPoint{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(points)
}
