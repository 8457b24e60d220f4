package lambda

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/aura-studio/edgeworker/dispatch"
	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"go.uber.org/zap"
)

// Message attributes understood on SQS records.
const (
	AttrReplyTo       = "ReplyTo"
	AttrCorrelationID = "CorrelationId"
)

// HandleSQS dispatches every record body as a base64 wire request. Without
// PartialMode the first failing record fails the whole batch.
func (e *Engine) HandleSQS(ctx context.Context, ev events.SQSEvent) (events.SQSEventResponse, error) {
	var resp events.SQSEventResponse
	for _, msg := range ev.Records {
		err := e.handleRecord(ctx, msg)
		if err == nil {
			continue
		}

		e.logger.Warn("sqs record failed", zap.String("message_id", msg.MessageId), zap.Error(err))
		if !e.PartialMode {
			return events.SQSEventResponse{}, fmt.Errorf("lambda: message %s: %w", msg.MessageId, err)
		}
		resp.BatchItemFailures = append(resp.BatchItemFailures, events.SQSBatchItemFailure{ItemIdentifier: msg.MessageId})
	}
	return resp, nil
}

func (e *Engine) handleRecord(ctx context.Context, msg events.SQSMessage) error {
	if !e.IsRunning() {
		return ErrStopped
	}

	wire, err := base64.StdEncoding.DecodeString(msg.Body)
	if err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	req, err := dispatch.DecodeRequest(wire)
	if err != nil {
		return fmt.Errorf("decode wire request: %w", err)
	}
	if req.Header.Get(dispatch.HeaderRequestID) == "" {
		req.Header.Set(dispatch.HeaderRequestID, msg.MessageId)
	}
	req = req.WithContext(ctx)

	resp, err := e.Dispatcher.Dispatch(ctx, req)
	if resp == nil {
		return err
	}
	if e.DebugMode {
		e.logger.Info("response", zap.String("message_id", msg.MessageId), zap.Int("status", resp.StatusCode))
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		resp.Body.Close()
		if err != nil {
			return err
		}
		return fmt.Errorf("module answered %d", resp.StatusCode)
	}

	replyTo := stringAttribute(msg, AttrReplyTo)
	if !e.ReplyMode || replyTo == "" {
		resp.Body.Close()
		return nil
	}
	return e.reply(ctx, msg, replyTo, resp)
}

func (e *Engine) reply(ctx context.Context, msg events.SQSMessage, replyTo string, resp *http.Response) error {
	wire, err := dispatch.EncodeResponse(resp)
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}

	client, err := e.replyClient(ctx)
	if err != nil {
		return err
	}

	correlationID := stringAttribute(msg, AttrCorrelationID)
	if correlationID == "" {
		correlationID = msg.MessageId
	}

	_, err = client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(replyTo),
		MessageBody: aws.String(base64.StdEncoding.EncodeToString(wire)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			AttrCorrelationID: {
				DataType:    aws.String("String"),
				StringValue: aws.String(correlationID),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("send reply to %s: %w", replyTo, err)
	}
	return nil
}

func stringAttribute(msg events.SQSMessage, name string) string {
	attr, ok := msg.MessageAttributes[name]
	if !ok || attr.StringValue == nil {
		return ""
	}
	return *attr.StringValue
}
