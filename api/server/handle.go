package server

import (
	"encoding/json"
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/photon-storage/go-common/log"

	"github.com/tia-gather/gatherd/api/pagination"
	"github.com/tia-gather/gatherd/api/service"
	"github.com/tia-gather/gatherd/celestia"
)

// handleFunc is a service handler in one of the accepted shapes:
//
//	func(*gin.Context) error
//	func(*gin.Context) (*resp, error)
//	func(*gin.Context, *req) error
//	func(*gin.Context, *req) (*resp, error)
//	func(*gin.Context, *req, *pagination.Query) (*pagination.Result, error)
//
// Non-context parameters are allocated and bound from the request before
// the handler runs.
type handleFunc interface{}

var (
	ctxType    = reflect.TypeOf((*gin.Context)(nil))
	pageType   = reflect.TypeOf((*pagination.Query)(nil))
	resultType = reflect.TypeOf((*pagination.Result)(nil))
	errType    = reflect.TypeOf((*error)(nil)).Elem()
)

type response struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data,omitempty"`
}

func validateFunc(fn handleFunc) error {
	t := reflect.TypeOf(fn)
	if t == nil || t.Kind() != reflect.Func {
		return errors.New("handler is not a function")
	}

	if t.NumIn() < 1 || t.NumIn() > 3 {
		return errors.New("handler must take one to three parameters")
	}

	if t.In(0) != ctxType {
		return errors.New("the first parameter must be a *gin.Context")
	}

	if t.NumIn() >= 2 && t.In(1).Kind() != reflect.Ptr {
		return errors.New("the second parameter must be a pointer")
	}

	if t.NumIn() == 3 && t.In(2) != pageType {
		return errors.New("the third parameter must be a *pagination.Query")
	}

	if t.NumOut() < 1 || t.NumOut() > 2 {
		return errors.New("handler must return one or two values")
	}

	if t.Out(t.NumOut()-1) != errType {
		return errors.New("the last return value must be an error")
	}

	if t.NumIn() == 3 && t.Out(0) != resultType {
		return errors.New("the first return value must be a *pagination.Result")
	}

	return nil
}

func (s *Server) handle(fn handleFunc) gin.HandlerFunc {
	if err := validateFunc(fn); err != nil {
		log.Fatal("invalid handler func", "error", err)
	}

	v := reflect.ValueOf(fn)
	t := v.Type()

	return func(c *gin.Context) {
		args := make([]reflect.Value, 0, t.NumIn())
		args = append(args, reflect.ValueOf(c))
		for i := 1; i < t.NumIn(); i++ {
			arg := reflect.New(t.In(i).Elem())
			if err := c.ShouldBind(arg.Interface()); err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, &response{
					Code: service.CodeInvalidRequest,
					Msg:  err.Error(),
				})
				return
			}

			args = append(args, arg)
		}

		rets := v.Call(args)
		if errVal := rets[len(rets)-1]; !errVal.IsNil() {
			writeError(c, errVal.Interface().(error))
			return
		}

		// Handlers that stream their own payload (blob downloads) have
		// written by now.
		if c.Writer.Written() {
			return
		}

		resp := &response{Code: service.CodeOK, Msg: "ok"}
		if len(rets) == 2 {
			resp.Data = rets[0].Interface()
		}

		c.JSON(http.StatusOK, resp)
	}
}

func writeError(c *gin.Context, err error) {
	pr := &service.PaymentRequired{}
	if errors.As(err, &pr) {
		c.JSON(http.StatusPaymentRequired, &response{
			Code: service.CodePaymentRequired,
			Msg:  "payment required",
			Data: pr,
		})
		return
	}

	be := &celestia.BroadcastError{}
	if errors.As(err, &be) {
		c.JSON(http.StatusBadRequest, &response{
			Code: service.CodeInvalidRequest,
			Msg:  be.Error(),
			Data: json.RawMessage(be.TxResponse),
		})
		return
	}

	cause := errors.Cause(err)
	if code, ok := service.ErrorCode[cause]; ok {
		status := service.HTTPStatus[cause]
		if status == 0 {
			status = http.StatusBadRequest
		}

		c.JSON(status, &response{Code: code, Msg: cause.Error()})
		return
	}

	log.Error("request failed",
		"path", c.FullPath(),
		"error", err,
	)
	c.JSON(http.StatusInternalServerError, &response{
		Code: service.CodeSystem,
		Msg:  "system error",
	})
}
