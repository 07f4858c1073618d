package ops

import (
	"context"

	"github.com/hpungsan/intelliclip/internal/capture"
)

// CaptureInput contains parameters for the Capture operation.
type CaptureInput struct {
	Text string
}

// CaptureOutput contains the result of the Capture operation.
type CaptureOutput struct {
	capture.Result
}

// Capture stores text as a new snippet via the trigger. Blank text is not an
// error: it yields created=false.
func Capture(ctx context.Context, trigger capture.Capturer, input CaptureInput) (*CaptureOutput, error) {
	res, err := trigger.Capture(ctx, input.Text)
	if err != nil {
		return nil, wrap("capture", err)
	}
	return &CaptureOutput{Result: res}, nil
}
