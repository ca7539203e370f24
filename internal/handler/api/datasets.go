package api

import (
	"errors"

	"github.com/labstack/echo/v4"

	models "FeatureMill/internal/domain/models"
	"FeatureMill/internal/frame"
	"FeatureMill/internal/usecase"
	xhttp "FeatureMill/pkg/http"
	xlogger "FeatureMill/pkg/logger"
	"FeatureMill/pkg/queue"
)

// DatasetHandler exposes the pipeline over HTTP.
type DatasetHandler struct {
	logger    *xlogger.Logger
	prep      *usecase.DatasetPreparer
	trainer   *usecase.Trainer
	predictor *usecase.Predictor
	stats     *usecase.StatsProvider
	queue     *queue.RedisQueue
	health    func(c echo.Context) error
}

func NewDatasetHandler(
	logger *xlogger.Logger,
	prep *usecase.DatasetPreparer,
	trainer *usecase.Trainer,
	predictor *usecase.Predictor,
	stats *usecase.StatsProvider,
) *DatasetHandler {
	return &DatasetHandler{
		logger:    logger,
		prep:      prep,
		trainer:   trainer,
		predictor: predictor,
		stats:     stats,
	}
}

// SetQueue enables async preparation via the job queue.
func (h *DatasetHandler) SetQueue(q *queue.RedisQueue) { h.queue = q }

// SetHealthCheck overrides the default liveness-only health endpoint.
func (h *DatasetHandler) SetHealthCheck(fn func(c echo.Context) error) { h.health = fn }

func (h *DatasetHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)

	g := e.Group("/api")
	g.POST("/datasets", h.Prepare)
	g.GET("/datasets/ranking", h.Ranking)
	g.GET("/stats", h.Stats)
	g.POST("/train", h.Train)
	g.POST("/predict", h.Predict)
}

func (h *DatasetHandler) Health(c echo.Context) error {
	if h.health != nil {
		return h.health(c)
	}
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

func (h *DatasetHandler) Prepare(c echo.Context) error {
	req := &models.PrepareRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	if req.Async {
		if h.queue == nil {
			return xhttp.AppErrorResponse(c, xhttp.BadRequestError("async preparation is not enabled"))
		}
		payload := usecase.PrepareJobPayload{Symbol: req.Symbol}
		if err := h.queue.Publish(c.Request().Context(), usecase.PrepareJobType, payload); err != nil {
			h.logger.Error("prepare enqueue error", xlogger.Error(err))
			return xhttp.AppErrorResponse(c, err)
		}
		return xhttp.AcceptedResponse(c, map[string]string{"symbol": req.Symbol, "state": "queued"})
	}

	prepared, err := h.prep.Prepare(c.Request().Context(), req.Symbol, req.MaxFeatures)
	if err != nil {
		h.logger.Error("prepare usecase error", xlogger.String("symbol", req.Symbol), xlogger.Error(err))
		return h.pipelineError(c, err)
	}
	return xhttp.SuccessResponse(c, prepared.Summary)
}

func (h *DatasetHandler) Ranking(c echo.Context) error {
	req := &models.RankingRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	prepared, err := h.prep.Prepare(c.Request().Context(), req.Symbol, 0)
	if err != nil {
		h.logger.Error("ranking usecase error", xlogger.String("symbol", req.Symbol), xlogger.Error(err))
		return h.pipelineError(c, err)
	}
	return xhttp.SuccessResponse(c, &models.RankingResponse{
		Symbol:   req.Symbol,
		Target:   prepared.Summary.Target,
		Ranked:   prepared.Summary.Ranked,
		Accepted: prepared.Summary.SelectedFeatures,
	})
}

func (h *DatasetHandler) Stats(c echo.Context) error {
	req := &models.StatsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	bundle, err := h.stats.Get(c.Request().Context(), req.Symbol)
	if err != nil {
		h.logger.Error("stats usecase error", xlogger.String("symbol", req.Symbol), xlogger.Error(err))
		return h.pipelineError(c, err)
	}
	return xhttp.SuccessResponse(c, bundle)
}

func (h *DatasetHandler) Train(c echo.Context) error {
	req := &models.TrainRunRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	result, err := h.trainer.Train(c.Request().Context(), req.Symbol)
	if err != nil {
		h.logger.Error("train usecase error", xlogger.String("symbol", req.Symbol), xlogger.Error(err))
		return h.pipelineError(c, err)
	}
	return xhttp.SuccessResponse(c, result)
}

func (h *DatasetHandler) Predict(c echo.Context) error {
	req := &models.PredictRunRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	forecast, err := h.predictor.Predict(c.Request().Context(), req.Symbol, req.DaysAhead)
	if err != nil {
		h.logger.Error("predict usecase error", xlogger.String("symbol", req.Symbol), xlogger.Error(err))
		return h.pipelineError(c, err)
	}
	return xhttp.SuccessResponse(c, forecast)
}

// pipelineError maps typed pipeline errors onto HTTP statuses.
func (h *DatasetHandler) pipelineError(c echo.Context, err error) error {
	var schemaErr *frame.SchemaError
	if errors.As(err, &schemaErr) {
		return xhttp.AppErrorResponse(c,
			xhttp.BadRequestError(schemaErr.Error()).WithParam("missing", schemaErr.Missing))
	}

	var insufficientErr *frame.InsufficientDataError
	if errors.As(err, &insufficientErr) {
		return xhttp.AppErrorResponse(c,
			xhttp.UnprocessableError(insufficientErr.Error()).
				WithParam("need", insufficientErr.Need).
				WithParam("got", insufficientErr.Got))
	}

	return xhttp.AppErrorResponse(c, err)
}
