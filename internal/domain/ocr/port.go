// Package ocr declares the screenshot-to-text capability consumed by the
// chat analysis pipeline. The concrete engine is an external collaborator.
package ocr

import "context"

// Recognizer converts one screenshot image to text.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte) (string, error)
}
