package worker

import (
	"sync"

	"convert-service/ddd/domain/gateway"
	"convert-service/ddd/domain/port"
	"convert-service/ddd/domain/repo"
	"convert-service/ddd/domain/service"
	"convert-service/ddd/infrastructure/database/persistence"
	"convert-service/ddd/infrastructure/engine"
	"convert-service/ddd/infrastructure/progress"
	"convert-service/ddd/infrastructure/queue"
	"convert-service/ddd/infrastructure/reporter"
	"convert-service/ddd/infrastructure/storage"
	"convert-service/internal/resource"
	"convert-service/pkg/config"
	"convert-service/pkg/kafka"
	"convert-service/pkg/logger"
	"convert-service/pkg/task"
)

// Component wires the conversion pipeline: queue, engine, service, storage,
// progress sinks and outcome reporter. Assembled once per process.
type Component struct {
	Queue         queue.JobQueue
	ConvertSvc    service.ConvertService
	JobRepo       repo.ConversionJobRepository
	Worker        ConvertWorker
	ProgressCache *progress.RedisSink
}

var (
	componentOnce sync.Once
	component     *Component
)

// DefaultComponent assembles the pipeline from global configuration.
func DefaultComponent() *Component {
	componentOnce.Do(func() {
		component = newComponent(config.GetGlobalConfig())
	})
	return component
}

func newComponent(cfg *config.Config) *Component {
	jobRepo := persistence.NewConversionJobRepository(nil)
	jobQueue := queue.NewMemoryJobQueue(cfg.Worker.QueueCapacity)

	ffEngine := engine.NewFFmpegEngine(cfg)
	convertSvc := service.NewConvertService(ffEngine, service.Options{
		VideoPreset:       cfg.Convert.FFmpeg.VideoPreset,
		Threads:           cfg.Convert.FFmpeg.Threads,
		CancelGracePeriod: cfg.Convert.FFmpeg.CancelGracePeriod,
	})

	storageGateway := storage.NewMinioStorage(resource.DefaultMinioResource())

	var outcomeReporter gateway.OutcomeReporter = reporter.NopReporter{}
	if cfg.Kafka.Enabled {
		outcomeReporter = reporter.NewKafkaReporter(kafka.DefaultClient(), cfg.Kafka.Topics.ConversionOutcomes)
	}

	redisSink := progress.NewRedisSink(resource.DefaultRedisResource().GetClient())
	sinks := []port.ProgressSink{
		progress.NewDBSink(jobRepo),
		redisSink,
	}

	workerID := cfg.Worker.WorkerID
	if workerID == "" {
		workerID = "convert-worker"
	}

	w := NewConvertWorker(
		workerID,
		jobQueue,
		convertSvc,
		jobRepo,
		storageGateway,
		outcomeReporter,
		sinks,
		cfg,
		cfg.Worker.MaxConcurrentJobs,
	)

	return &Component{
		Queue:         jobQueue,
		ConvertSvc:    convertSvc,
		JobRepo:       jobRepo,
		Worker:        w,
		ProgressCache: redisSink,
	}
}

// RegisterBackgroundTasks hooks the worker pool into the task manager so it
// starts and stops with the application.
func (c *Component) RegisterBackgroundTasks() {
	task.Register(&task.Func{
		TaskName:  "convert-worker",
		StartFunc: c.Worker.Start,
		StopFunc: func() error {
			err := c.Worker.Stop()
			_ = c.Queue.Close()
			return err
		},
	})
	logger.Infof("convert worker component registered")
}
