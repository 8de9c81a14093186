package vision

import "context"

// UnknownExpression is returned when no face is detected in the image.
const UnknownExpression = "unknown"

// Client abstracts facial-expression providers. DetectExpression
// returns the dominant expression label of the first detected face, or
// UnknownExpression when no face is found.
type Client interface {
	DetectExpression(ctx context.Context, image []byte) (string, error)
}
