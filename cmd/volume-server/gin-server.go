package main

import (
	"fmt"
	"net/http"

	"github.com/aknopov/ballcube"
	"github.com/ericlagergren/decimal"
	"github.com/gin-gonic/gin"
)

var (
	stopChan = make(chan struct{}, 1)
)

// Estimates sharing the memoized term tables
type volumeEstimator interface {
	LogVolume(n int, s *decimal.Big) (*decimal.Big, error)
}

func startGin(port int, est volumeEstimator) {
	engine := newEngine(est)

	logger.Info().Msg("-- Starting server...")
	go func() { ballcube.AssertNoErr(ballcube.ND, engine.Run(fmt.Sprintf(":%d", port))) }()

	<-stopChan
	logger.Info().Msg("-- Server stopped")
}

func newEngine(est volumeEstimator) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery()) // no debug logging
	ballcube.AssertNoErr(ballcube.ND, engine.SetTrustedProxies(nil))
	engine.POST("/", func(ctx *gin.Context) { logVolume4Gin(ctx, est) })
	engine.HEAD("/", func(ctx *gin.Context) { ctx.Status(http.StatusOK) })
	return engine
}

func logVolume4Gin(ctx *gin.Context, est volumeEstimator) {
	request := new(VolumeRequest)

	if err := ctx.ShouldBindJSON(request); err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{err.Error()})
		return
	}

	if request.Dim == -1 {
		logger.Info().Msg("-- Stopping server...")
		ctx.JSON(http.StatusOK, VolumeResponse{"done"})
		stopChan <- ballcube.ND
		return
	}

	scale, err := ballcube.ParseScale(request.Scale)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{err.Error()})
		return
	}

	logVol, err := est.LogVolume(request.Dim, scale)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, VolumeResponse{logVol.String()})
}
