package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"business-recommender/internal/usecase"
)

const (
	correlationHeader = "X-Correlation-Id"
	errorCodeHeader   = "X-Error-Code"
	formContentType   = "application/x-www-form-urlencoded"
)

type Recommender interface {
	Recommend(ctx context.Context, in usecase.RecommendInput) (usecase.RecommendOutput, error)
}

// inboundMessage is the message shape produced by an API Gateway mapping
// template, where fields keep the "+" encoding of the webhook body.
type inboundMessage struct {
	Body      string `json:"Body"`
	FromCity  string `json:"FromCity"`
	FromState string `json:"FromState"`
	FromZip   string `json:"FromZip"`
}

// Handler adapts API Gateway proxy events carrying an inbound SMS to the
// recommend use case. Every outcome is answered with TwiML and status 200 so
// the sender always gets a message; failures are tagged with X-Error-Code.
type Handler struct {
	uc     Recommender
	logger *slog.Logger
}

func NewHandler(uc Recommender, logger *slog.Logger) (*Handler, error) {
	if uc == nil {
		return nil, errors.New("handler: recommender must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{uc: uc, logger: logger}, nil
}

func (h *Handler) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	correlationID := headerValue(event.Headers, correlationHeader)
	if correlationID == "" {
		correlationID = uuid.NewString()
	}
	logger := h.logger.With("correlationId", correlationID)

	in, err := decodeInput(event)
	if err != nil {
		logger.WarnContext(ctx, "rejecting undecodable message", "err", err)
		return failure(correlationID, &usecase.Error{Code: usecase.ErrorInvalidInput, Reason: "undecodable_body", Err: err}), nil
	}

	out, err := h.uc.Recommend(ctx, in)
	if err != nil {
		logger.ErrorContext(ctx, "recommendation failed", "err", err, "code", errorCode(err))
		return failure(correlationID, err), nil
	}

	logger.InfoContext(ctx, "replied", "selected", out.Selection.IsPresent())
	return respond(correlationID, out.Reply, ""), nil
}

func decodeInput(event events.APIGatewayProxyRequest) (usecase.RecommendInput, error) {
	body := event.Body
	if event.IsBase64Encoded {
		raw, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return usecase.RecommendInput{}, fmt.Errorf("handler: decode base64 body: %w", err)
		}
		body = string(raw)
	}

	if isForm(headerValue(event.Headers, "Content-Type")) {
		values, err := url.ParseQuery(body)
		if err != nil {
			return usecase.RecommendInput{}, fmt.Errorf("handler: parse form body: %w", err)
		}
		return usecase.RecommendInput{
			Body:    values.Get("Body"),
			City:    values.Get("FromCity"),
			State:   values.Get("FromState"),
			Zip:     values.Get("FromZip"),
			Decoded: true,
		}, nil
	}

	if strings.TrimSpace(body) != "" {
		var msg inboundMessage
		if err := json.Unmarshal([]byte(body), &msg); err != nil {
			return usecase.RecommendInput{}, fmt.Errorf("handler: decode json body: %w", err)
		}
		return usecase.RecommendInput{Body: msg.Body, City: msg.FromCity, State: msg.FromState, Zip: msg.FromZip}, nil
	}

	q := event.QueryStringParameters
	return usecase.RecommendInput{
		Body:  q["Body"],
		City:  q["FromCity"],
		State: q["FromState"],
		Zip:   q["FromZip"],
	}, nil
}

func isForm(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == formContentType
}

// headerValue looks a header up case-insensitively; API Gateway passes names
// through as the client sent them.
func headerValue(headers map[string]string, name string) string {
	if v, ok := headers[name]; ok {
		return strings.TrimSpace(v)
	}
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func errorCode(err error) usecase.ErrorCode {
	var ucErr *usecase.Error
	if errors.As(err, &ucErr) {
		return ucErr.Code
	}
	return usecase.ErrorInternal
}

func failure(correlationID string, err error) events.APIGatewayProxyResponse {
	return respond(correlationID, usecase.FailureReply(err), errorCode(err))
}

func respond(correlationID, twiml string, code usecase.ErrorCode) events.APIGatewayProxyResponse {
	headers := map[string]string{
		"Content-Type":    "text/xml; charset=utf-8",
		correlationHeader: correlationID,
	}
	if code != "" {
		headers[errorCodeHeader] = string(code)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers:    headers,
		Body:       twiml,
	}
}
