package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"recipebox/internal/logging"

	"github.com/hibiken/asynq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
)

const (
	TypeRecipePublished = "notification:recipe_published"
	DefaultQueue        = "default"
)

var (
	tracer       = otel.Tracer("recipebox")
	meter        = otel.Meter("recipebox")
	jobsEnqueued metric.Int64Counter
)

// RecipePublishedPayload notifies subscribers of a newly published recipe.
// The trace context is carried along so the worker span joins the request
// trace.
type RecipePublishedPayload struct {
	RecipeID     uint              `json:"recipe_id"`
	RecipeName   string            `json:"recipe_name"`
	AuthorID     uint              `json:"author_id"`
	TraceContext map[string]string `json:"trace_context"`
}

type Client struct {
	client *asynq.Client
}

func NewClient(redisURL string) (*Client, error) {
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := asynq.NewClient(opt)
	jobsEnqueued, err = meter.Int64Counter(
		"jobs.enqueued",
		metric.WithDescription("Total number of jobs enqueued"),
	)
	if err != nil {
		logging.Logger().Error().Err(err).Msg("failed to create jobs enqueued counter")
	}

	return &Client{client: client}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) EnqueueRecipePublished(ctx context.Context, recipeID uint, recipeName string, authorID uint) error {
	ctx, span := tracer.Start(ctx, "job.enqueue.recipe_published")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("recipe.id", int64(recipeID)),
		attribute.String("recipe.name", recipeName),
		attribute.String("job.type", TypeRecipePublished),
	)

	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	payload := RecipePublishedPayload{
		RecipeID:     recipeID,
		RecipeName:   recipeName,
		AuthorID:     authorID,
		TraceContext: carrier,
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	task := asynq.NewTask(TypeRecipePublished, payloadBytes)
	info, err := c.client.EnqueueContext(ctx, task)
	if err != nil {
		span.RecordError(err)
		return err
	}

	if jobsEnqueued != nil {
		jobsEnqueued.Add(ctx, 1, metric.WithAttributes(
			attribute.String("job.type", TypeRecipePublished),
		))
	}

	span.SetAttributes(
		attribute.String("job.id", info.ID),
		attribute.String("job.queue", info.Queue),
	)

	logging.Info(ctx).
		Str("job_id", info.ID).
		Str("job_type", TypeRecipePublished).
		Uint("recipe_id", recipeID).
		Msg("job enqueued")

	return nil
}
