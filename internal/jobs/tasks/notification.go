package tasks

import (
	"context"
	"encoding/json"
	"time"

	"recipebox/internal/database"
	"recipebox/internal/logging"
	"recipebox/internal/models"

	"github.com/hibiken/asynq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
)

var (
	tracer        = otel.Tracer("recipebox-worker")
	meter         = otel.Meter("recipebox-worker")
	jobsCompleted metric.Int64Counter
	jobsFailed    metric.Int64Counter
	jobsDuration  metric.Float64Histogram
)

func init() {
	var err error

	jobsCompleted, err = meter.Int64Counter(
		"jobs.completed",
		metric.WithDescription("Total number of jobs completed successfully"),
	)
	if err != nil {
		logging.Logger().Error().Err(err).Msg("failed to create jobs completed counter")
	}

	jobsFailed, err = meter.Int64Counter(
		"jobs.failed",
		metric.WithDescription("Total number of jobs failed"),
	)
	if err != nil {
		logging.Logger().Error().Err(err).Msg("failed to create jobs failed counter")
	}

	jobsDuration, err = meter.Float64Histogram(
		"jobs.duration_ms",
		metric.WithDescription("Job processing duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		logging.Logger().Error().Err(err).Msg("failed to create jobs duration histogram")
	}
}

type RecipePublishedPayload struct {
	RecipeID     uint              `json:"recipe_id"`
	RecipeName   string            `json:"recipe_name"`
	AuthorID     uint              `json:"author_id"`
	TraceContext map[string]string `json:"trace_context"`
}

// HandleRecipePublished fans a new-recipe notification out to every
// subscriber of the recipe's author.
func HandleRecipePublished(ctx context.Context, task *asynq.Task) error {
	start := time.Now()

	var payload RecipePublishedPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		recordJobMetrics(ctx, "notification:recipe_published", false, time.Since(start))
		return err
	}

	parentCtx := otel.GetTextMapPropagator().Extract(
		context.Background(),
		propagation.MapCarrier(payload.TraceContext),
	)

	ctx, span := tracer.Start(parentCtx, "job.recipe_published")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("recipe.id", int64(payload.RecipeID)),
		attribute.String("recipe.name", payload.RecipeName),
		attribute.String("job.type", "notification:recipe_published"),
	)

	var subscriptions []models.Subscription
	if err := database.DB.WithContext(ctx).
		Preload("User").
		Where("author_id = ?", payload.AuthorID).
		Find(&subscriptions).Error; err != nil {
		span.RecordError(err)
		recordJobMetrics(ctx, "notification:recipe_published", false, time.Since(start))
		return err
	}

	for _, sub := range subscriptions {
		logging.Info(ctx).
			Uint("recipe_id", payload.RecipeID).
			Str("recipe_name", payload.RecipeName).
			Uint("subscriber_id", sub.UserID).
			Str("subscriber_email", sub.User.Email).
			Msg("notifying subscriber of new recipe")
	}

	span.SetStatus(codes.Ok, "notification processed")
	span.SetAttributes(attribute.Int("notification.recipients", len(subscriptions)))

	logging.Info(ctx).
		Uint("recipe_id", payload.RecipeID).
		Int("recipients", len(subscriptions)).
		Msg("recipe notification processed")

	recordJobMetrics(ctx, "notification:recipe_published", true, time.Since(start))

	return nil
}

func recordJobMetrics(ctx context.Context, jobType string, success bool, duration time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.String("job.type", jobType),
	}

	if success {
		if jobsCompleted != nil {
			jobsCompleted.Add(ctx, 1, metric.WithAttributes(attrs...))
		}
	} else {
		if jobsFailed != nil {
			jobsFailed.Add(ctx, 1, metric.WithAttributes(attrs...))
		}
	}

	if jobsDuration != nil {
		jobsDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
	}
}
