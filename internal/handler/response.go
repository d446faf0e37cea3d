package handler

import (
	"errors"
	"net/http"

	"usermanagement_server/internal/service/command"
	"usermanagement_server/pkg/errorx"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// ResponseData is the body of fault and parameter errors.
type ResponseData struct {
	Code int `json:"code"`
	Msg  any `json:"msg"`
}

// HandleResult writes a command outcome. Faults go through HandleError;
// results are written as-is with a status derived from the first error code.
func HandleResult[T any](c *gin.Context, r command.Result[T], err error) {
	if err != nil {
		HandleError(c, err)
		return
	}
	if r.Success {
		c.JSON(http.StatusOK, r)
		return
	}
	c.JSON(statusOf(r.Errors), r)
}

func statusOf(codes []errorx.ErrorCode) int {
	if len(codes) == 0 {
		return http.StatusBadRequest
	}
	switch codes[0] {
	case errorx.UserUndefined, errorx.DoesNotExist:
		return http.StatusNotFound
	case errorx.AlreadyExists, errorx.AlreadyTaken, errorx.FriendAlready, errorx.RequestAlready:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

// HandleError writes a fault. Known client-side codes keep their message;
// everything else is logged and reported as server busy.
func HandleError(c *gin.Context, err error) {
	var codeErr *errorx.CodeError
	if errors.As(err, &codeErr) {
		switch codeErr.Code {
		case errorx.CodeInvalidParam:
			c.JSON(http.StatusBadRequest, ResponseData{Code: codeErr.Code, Msg: codeErr.Msg})
			return
		case errorx.CodeUnauthorized:
			c.JSON(http.StatusUnauthorized, ResponseData{Code: codeErr.Code, Msg: codeErr.Msg})
			return
		}
	}

	zap.L().Error("system error",
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
		zap.Error(err),
	)
	c.JSON(http.StatusInternalServerError, ResponseData{
		Code: errorx.ErrServerBusy.Code,
		Msg:  errorx.ErrServerBusy.Msg,
	})
}

// HandleParamError writes a binding failure, translating validator errors when possible.
func HandleParamError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && Trans != nil {
		c.JSON(http.StatusBadRequest, ResponseData{
			Code: errorx.ErrInvalidParam.Code,
			Msg:  RemoveTopStruct(validationErrs.Translate(Trans)),
		})
		return
	}

	zap.L().Debug("param bind error", zap.Error(err))
	c.JSON(http.StatusBadRequest, ResponseData{
		Code: errorx.ErrInvalidParam.Code,
		Msg:  errorx.ErrInvalidParam.Msg,
	})
}
