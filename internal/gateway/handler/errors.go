package handler

import (
	"errors"
	"net/http"

	"connectrpc.com/connect"

	"codecanvas/internal/artifact"
	"codecanvas/internal/gateway/repository/snapshot"
	"codecanvas/internal/generate"
	"codecanvas/internal/livepreview"
	"codecanvas/internal/sandbox"
)

// toConnectError folds the pipeline's typed failures into connect error
// codes; writeError then maps those onto HTTP statuses. Keeping the code
// taxonomy in one place means handlers just return errors.
func toConnectError(err error) *connect.Error {
	var ce *connect.Error
	if errors.As(err, &ce) {
		return ce
	}
	var ve *artifact.ValidationError
	var ge *generate.GenerationError
	switch {
	case errors.As(err, &ve), errors.As(err, &ge):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, snapshot.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, sandbox.ErrNotExecutable):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, sandbox.ErrProvisioning):
		return connect.NewError(connect.CodeUnavailable, err)
	case errors.Is(err, livepreview.ErrSessionExpired):
		return connect.NewError(connect.CodeResourceExhausted, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

func httpStatus(code connect.Code) int {
	switch code {
	case connect.CodeInvalidArgument:
		return http.StatusUnprocessableEntity
	case connect.CodeFailedPrecondition:
		return http.StatusBadRequest
	case connect.CodeNotFound:
		return http.StatusNotFound
	case connect.CodeResourceExhausted:
		return http.StatusConflict
	case connect.CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	ce := toConnectError(err)
	writeJSON(w, httpStatus(ce.Code()), map[string]string{
		"error": ce.Message(),
		"code":  ce.Code().String(),
	})
}
