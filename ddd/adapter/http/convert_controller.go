package http

import (
	"sync"

	"github.com/gin-gonic/gin"

	"convert-service/ddd/application/app"
	"convert-service/ddd/application/cqe"
	"convert-service/ddd/domain/vo"
	"convert-service/pkg/middleware"
	"convert-service/pkg/restapi"
)

var (
	convertControllerOnce sync.Once
	convertController     *ConvertController
)

// ConvertController exposes the conversion job API.
type ConvertController struct {
	convertApp app.ConvertApp
}

// DefaultConvertController returns the singleton controller.
func DefaultConvertController() *ConvertController {
	convertControllerOnce.Do(func() {
		convertController = NewConvertController(app.DefaultConvertApp())
	})
	return convertController
}

func NewConvertController(convertApp app.ConvertApp) *ConvertController {
	return &ConvertController{convertApp: convertApp}
}

// CreateConversion accepts a new conversion job.
func (c *ConvertController) CreateConversion(ctx *gin.Context) {
	var req cqe.CreateConversionReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		restapi.Failed(ctx, err)
		return
	}
	if req.UserUUID == "" {
		req.UserUUID = ctx.GetString(middleware.KeyUserUUID)
	}

	job, err := c.convertApp.CreateConversion(ctx.Request.Context(), &req)
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, job)
}

// GetConversion returns the stored view of one job.
func (c *ConvertController) GetConversion(ctx *gin.Context) {
	var req cqe.QueryConversionReq
	if err := ctx.ShouldBindUri(&req); err != nil {
		restapi.Failed(ctx, err)
		return
	}

	job, err := c.convertApp.GetConversion(ctx.Request.Context(), req.JobUUID)
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, job)
}

// GetConversionProgress returns the live progress of one job.
func (c *ConvertController) GetConversionProgress(ctx *gin.Context) {
	var req cqe.QueryConversionReq
	if err := ctx.ShouldBindUri(&req); err != nil {
		restapi.Failed(ctx, err)
		return
	}

	p, err := c.convertApp.GetConversionProgress(ctx.Request.Context(), req.JobUUID)
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, p)
}

// CancelConversion requests cancellation of a queued or running job.
func (c *ConvertController) CancelConversion(ctx *gin.Context) {
	var req cqe.QueryConversionReq
	if err := ctx.ShouldBindUri(&req); err != nil {
		restapi.Failed(ctx, err)
		return
	}

	if err := c.convertApp.CancelConversion(ctx.Request.Context(), req.JobUUID); err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, gin.H{"job_uuid": req.JobUUID, "status": "cancel_requested"})
}

// ListFormats returns the supported target formats and quality tiers.
func (c *ConvertController) ListFormats(ctx *gin.Context) {
	formats := make([]gin.H, 0, len(vo.SupportedFormats()))
	for _, f := range vo.SupportedFormats() {
		formats = append(formats, gin.H{
			"format":   f.String(),
			"kind":     string(f.Kind()),
			"lossless": f.IsLossless(),
		})
	}
	restapi.Success(ctx, gin.H{
		"formats":       formats,
		"quality_tiers": []string{vo.TierLow.String(), vo.TierMedium.String(), vo.TierHigh.String()},
	})
}

// ListConversions returns jobs filtered by user and status.
func (c *ConvertController) ListConversions(ctx *gin.Context) {
	var req cqe.ListConversionsReq
	if err := ctx.ShouldBindQuery(&req); err != nil {
		restapi.Failed(ctx, err)
		return
	}

	jobs, err := c.convertApp.ListConversions(ctx.Request.Context(), &req)
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, jobs)
}
