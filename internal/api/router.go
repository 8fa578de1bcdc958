package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/wuwenbin0122/applytrackr/internal/applications"
)

// BindingValidator returns gin's validator engine with the application tags
// registered, so request binding and the service share one instance.
func BindingValidator() (*validator.Validate, error) {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil, fmt.Errorf("api: unexpected binding engine %T", binding.Validator.Engine())
	}
	if err := applications.RegisterValidations(v); err != nil {
		return nil, fmt.Errorf("api: register validations: %w", err)
	}
	return v, nil
}

func NewRouter(handler *Handler, logger *zap.Logger, metrics *Metrics) (*gin.Engine, error) {
	if _, err := BindingValidator(); err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(RequestLogger(logger), gin.Recovery())
	if metrics != nil {
		router.Use(metrics.Middleware())
		router.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	handler.RegisterRoutes(router)

	return router, nil
}
