package handlers

import (
	"errors"
	"net/http"
	"time"

	"load_transient/internal/models"
	"load_transient/internal/sequencer"
	"load_transient/internal/service"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK       = "ok"
	statusStarted  = "started"
	statusCanceled = "canceled"

	errStartTest       = "failed to start test run"
	errCancelTest      = "failed to cancel test run"
	errGetState        = "failed to load state"
	errInvalidBodyPref = "invalid body: "
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// Respond with a status and include current state if available (best-effort).
func (h *Handler) respondWithStatusAndState(c *gin.Context, status string, extra gin.H) {
	ctx := c.Request.Context()
	resp := gin.H{"status": status}
	for k, v := range extra {
		resp[k] = v
	}
	st, err := h.services.Monitoring.GetState(ctx)
	if err == nil {
		resp["state"] = st
	}
	c.JSON(http.StatusOK, resp)
}

// StartTestRequest overrides the configured test parameters. Omitted fields
// keep their default; durations are in seconds.
type StartTestRequest struct {
	// Chamber setpoints in °C, each within [0, 60]
	TemperatureSetpoints []float64 `json:"temperature_setpoints,omitempty" example:"10,25,45"`
	// Max wait for each setpoint, within [0, 3600]
	StabilizationTimeoutS *float64 `json:"stabilization_timeout_s,omitempty" example:"2400"`
	// Accepted deviation from the setpoint in °C
	TemperatureTolerance *float64 `json:"temperature_tolerance,omitempty" example:"0"`
	LoadVoltage          *float64 `json:"load_voltage,omitempty" example:"20"`
	// Within [0, 5] A
	InitialCurrent *float64 `json:"initial_current,omitempty" example:"3"`
	// Within [1, 10] A and above initial_current
	FinalCurrent  *float64 `json:"final_current,omitempty" example:"6"`
	CurrentStep   *float64 `json:"current_step,omitempty" example:"0.5"`
	PollIntervalS *float64 `json:"poll_interval_s,omitempty" example:"0.1"`
	SettleDelayS  *float64 `json:"settle_delay_s,omitempty" example:"1"`
}

// apply returns cfg with every provided field replaced.
func (r StartTestRequest) apply(cfg models.TestConfiguration) models.TestConfiguration {
	if r.TemperatureSetpoints != nil {
		cfg.TemperatureSetpoints = append([]float64(nil), r.TemperatureSetpoints...)
	}
	setSeconds(&cfg.StabilizationTimeout, r.StabilizationTimeoutS)
	setFloat(&cfg.TemperatureTolerance, r.TemperatureTolerance)
	setFloat(&cfg.LoadVoltage, r.LoadVoltage)
	setFloat(&cfg.InitialCurrent, r.InitialCurrent)
	setFloat(&cfg.FinalCurrent, r.FinalCurrent)
	setFloat(&cfg.CurrentStep, r.CurrentStep)
	setSeconds(&cfg.PollInterval, r.PollIntervalS)
	setSeconds(&cfg.SettleDelay, r.SettleDelayS)
	return cfg
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setSeconds(dst *time.Duration, v *float64) {
	if v != nil {
		*dst = time.Duration(*v * float64(time.Second))
	}
}

// TestConfigResponse is the test configuration as exposed over HTTP.
type TestConfigResponse struct {
	TemperatureSetpoints  []float64 `json:"temperature_setpoints"`
	StabilizationTimeoutS float64   `json:"stabilization_timeout_s"`
	TemperatureTolerance  float64   `json:"temperature_tolerance"`
	LoadVoltage           float64   `json:"load_voltage"`
	InitialCurrent        float64   `json:"initial_current"`
	FinalCurrent          float64   `json:"final_current"`
	CurrentStep           float64   `json:"current_step"`
	PollIntervalS         float64   `json:"poll_interval_s"`
	SettleDelayS          float64   `json:"settle_delay_s"`
}

func newTestConfigResponse(cfg models.TestConfiguration) TestConfigResponse {
	return TestConfigResponse{
		TemperatureSetpoints:  cfg.TemperatureSetpoints,
		StabilizationTimeoutS: cfg.StabilizationTimeout.Seconds(),
		TemperatureTolerance:  cfg.TemperatureTolerance,
		LoadVoltage:           cfg.LoadVoltage,
		InitialCurrent:        cfg.InitialCurrent,
		FinalCurrent:          cfg.FinalCurrent,
		CurrentStep:           cfg.CurrentStep,
		PollIntervalS:         cfg.PollInterval.Seconds(),
		SettleDelayS:          cfg.SettleDelay.Seconds(),
	}
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Start a test run
// @Description  Validates the merged configuration, resets the event log and starts the sequencer.
// @Tags         test
// @Accept       json
// @Produce      json
// @Param        body  body      StartTestRequest  false  "Overrides of the default configuration"
// @Success      200   {object}  map[string]interface{}  "status, session, config, state"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/test/start [post]
// @Security     BearerAuth
func (h *Handler) startTest(c *gin.Context) {
	var req StartTestRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
			return
		}
	}
	cfg := req.apply(h.services.TestRun.Defaults())

	st, err := h.services.TestRun.Start(c.Request.Context(), operatorID(c), cfg)
	if err != nil {
		var rangeErr *sequencer.RangeError
		switch {
		case errors.As(err, &rangeErr):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": sequencer.CodeRangeError})
		case errors.Is(err, service.ErrRunInProgress):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			h.logAndJSONError(c, http.StatusInternalServerError, errStartTest, "test_start_failed", err)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  statusStarted,
		"session": st.SessionID,
		"config":  newTestConfigResponse(cfg),
		"state":   st,
	})
}

// @Summary      Cancel the active test run
// @Description  Forces the sequencer to END; returns once the instruments are shut down.
// @Tags         test
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "status, state"
// @Failure      401  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/test/cancel [post]
// @Security     BearerAuth
func (h *Handler) cancelTest(c *gin.Context) {
	if h.log != nil {
		h.log.Infow("test_cancel_requested", "operator", operatorID(c))
	}
	if err := h.services.TestRun.Cancel(c.Request.Context()); err != nil {
		if errors.Is(err, service.ErrNoActiveRun) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errCancelTest, "test_cancel_failed", err)
		return
	}
	h.respondWithStatusAndState(c, statusCanceled, gin.H{})
}

// @Summary      Get run state
// @Tags         test
// @Produce      json
// @Success      200  {object}  models.RunState
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/test/state [get]
// @Security     BearerAuth
func (h *Handler) getState(c *gin.Context) {
	st, err := h.services.Monitoring.GetState(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetState, "test_get_state_failed", err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary      Get default test configuration
// @Tags         test
// @Produce      json
// @Success      200  {object}  TestConfigResponse
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/test/defaults [get]
// @Security     BearerAuth
func (h *Handler) getDefaults(c *gin.Context) {
	c.JSON(http.StatusOK, newTestConfigResponse(h.services.TestRun.Defaults()))
}
