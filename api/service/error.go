package service

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"

	"github.com/tia-gather/gatherd/gather"
)

// API codes shared with the server layer for outcomes that are not plain
// sentinel errors.
const (
	CodeOK              = 0
	CodeSystem          = 1000
	CodeInvalidRequest  = 1001
	CodePaymentRequired = 1002
)

var (
	errGatheringNotFound  = errors.New("gathering not found")
	errBlobNotFound       = errors.New("blob not found")
	errMissingGatheringID = errors.New("missing gathering id")
	errMissingAddress     = errors.New("missing wallet address")
	errMissingBlobID      = errors.New("missing blob id")
	errMissingFile        = errors.New("no file provided")
	errInvalidFileType    = errors.New("unsupported image type")
	errFileTooLarge       = errors.New("file too large")
)

// ErrorCode maps service errors to stable API error codes.
var ErrorCode = map[error]int{
	errGatheringNotFound:  1003,
	gather.ErrCompleted:   1004,
	gather.ErrExpired:     1005,
	errMissingGatheringID: 1006,
	errMissingAddress:     1007,
	errMissingBlobID:      1008,
	errBlobNotFound:       1009,
	errMissingFile:        1010,
	errInvalidFileType:    1011,
	errFileTooLarge:       1012,
}

// HTTPStatus maps service errors to transport status codes. Anything
// absent from this map is a system error.
var HTTPStatus = map[error]int{
	errGatheringNotFound:  http.StatusNotFound,
	gather.ErrCompleted:   http.StatusBadRequest,
	gather.ErrExpired:     http.StatusBadRequest,
	errMissingGatheringID: http.StatusBadRequest,
	errMissingAddress:     http.StatusBadRequest,
	errMissingBlobID:      http.StatusBadRequest,
	errBlobNotFound:       http.StatusNotFound,
	errMissingFile:        http.StatusBadRequest,
	errInvalidFileType:    http.StatusBadRequest,
	errFileTooLarge:       http.StatusBadRequest,
}

// PaymentRequired is the alternate outcome of a payment-gated write: the
// quoted price the caller has to pay before resubmitting with proof. It
// travels as an error so operations keep a single failure channel, and is
// mapped to HTTP 402 at the server boundary only.
type PaymentRequired struct {
	AmountUtia  int64  `json:"amount_utia"`
	PayTo       string `json:"pay_to"`
	Description string `json:"description"`
}

func (p *PaymentRequired) Error() string {
	return fmt.Sprintf("payment required: %d utia to %s", p.AmountUtia, p.PayTo)
}
