package s3

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"

	"mediaflow/internal/domain"
	"mediaflow/internal/pipeline"
)

// retryableCodes are vendor error codes that indicate a temporary condition.
// NCP Object Storage and AWS both use the S3 code set here.
var retryableCodes = map[string]bool{
	"SlowDown":            true,
	"RequestTimeout":      true,
	"InternalError":       true,
	"ServiceUnavailable":  true,
	"ThrottlingException": true,
	"Throttling":          true,
}

var notFoundCodes = map[string]bool{
	"NoSuchKey":    true,
	"NoSuchBucket": true,
	"NotFound":     true,
}

// classify maps an S3 SDK error onto the pipeline's failure taxonomy: missing
// objects become domain.ErrNotFound (permanent), throttling and 5xx responses
// become transient, everything else stays permanent by default.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		if notFoundCodes[code] {
			return fmt.Errorf("%w: %v", domain.ErrNotFound, err)
		}
		if retryableCodes[code] {
			return pipeline.Transient(err)
		}
	}

	var respErr *smithyhttp.ResponseError
	if errors.As(err, &respErr) {
		status := respErr.HTTPStatusCode()
		switch {
		case status == http.StatusNotFound:
			return fmt.Errorf("%w: %v", domain.ErrNotFound, err)
		case status >= http.StatusInternalServerError || status == http.StatusTooManyRequests:
			return pipeline.Transient(err)
		}
	}

	return err
}
