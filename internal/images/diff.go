// Package images keeps product and variant image rows in step with the remote asset store.
package images

import (
	"strings"

	pkgerrors "github.com/edelguur/admin-backend/pkg/errors"
)

// ImageRef is one hosted image as clients send and receive it.
type ImageRef struct {
	ImageURL string `json:"image_url"`
	PublicID string `json:"public_id"`
}

// Diff compares the stored images with the desired set by public id. Deletes keep
// the order of current and inserts keep the order of desired.
func Diff(current, desired []ImageRef) (toDelete, toInsert []ImageRef, err error) {
	want := make(map[string]struct{}, len(desired))
	unique := make([]ImageRef, 0, len(desired))
	for i, ref := range desired {
		id := strings.TrimSpace(ref.PublicID)
		if id == "" {
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "images[].public_id is required").
				WithDetails(map[string]any{"index": i})
		}
		if _, dup := want[id]; dup {
			continue
		}
		want[id] = struct{}{}
		ref.PublicID = id
		unique = append(unique, ref)
	}

	have := make(map[string]struct{}, len(current))
	for _, ref := range current {
		have[ref.PublicID] = struct{}{}
		if _, keep := want[ref.PublicID]; !keep {
			toDelete = append(toDelete, ref)
		}
	}
	for _, ref := range unique {
		if _, exists := have[ref.PublicID]; !exists {
			toInsert = append(toInsert, ref)
		}
	}
	return toDelete, toInsert, nil
}
