package sqsclient

import (
	"bufio"
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/aura-studio/edgeworker/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/google/uuid"
)

var ErrNoReplyQueue = errors.New("sqsclient: no reply queue configured")

// Client sends wire requests to the queue an edgeworker Lambda consumes and,
// when a reply queue is configured, matches the replies back to callers by
// correlation id.
type Client struct {
	*Options
	pending  sync.Map // correlation id -> chan *http.Response
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewClient(ctx context.Context, opts ...Option) (*Client, error) {
	c := &Client{
		Options:  NewOptions(opts...),
		stopChan: make(chan struct{}),
	}
	if c.RequestQueue == "" {
		return nil, errors.New("sqsclient: no request queue configured")
	}
	if c.SQSClient == nil {
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("sqsclient: load aws config: %w", err)
		}
		c.SQSClient = sqs.NewFromConfig(cfg)
	}

	if c.ReplyQueue != "" {
		c.wg.Add(1)
		go c.listener()
	}
	return c, nil
}

func (c *Client) Close() {
	c.stopOnce.Do(func() { close(c.stopChan) })
	c.wg.Wait()
}

func (c *Client) listener() {
	defer c.wg.Done()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-c.stopChan
		cancel()
	}()

	for {
		select {
		case <-c.stopChan:
			return
		default:
		}

		output, err := c.SQSClient.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:              aws.String(c.ReplyQueue),
			MaxNumberOfMessages:   10,
			WaitTimeSeconds:       int32(c.WaitTime / time.Second),
			MessageAttributeNames: []string{"All"},
		})
		if err != nil {
			select {
			case <-c.stopChan:
				return
			case <-time.After(time.Second):
			}
			continue
		}

		for _, msg := range output.Messages {
			c.handleIncomingMessage(msg)
			_, _ = c.SQSClient.DeleteMessage(ctx, &sqs.DeleteMessageInput{
				QueueUrl:      aws.String(c.ReplyQueue),
				ReceiptHandle: msg.ReceiptHandle,
			})
		}
	}
}

func (c *Client) handleIncomingMessage(msg types.Message) {
	attr, ok := msg.MessageAttributes[lambda.AttrCorrelationID]
	if !ok || attr.StringValue == nil || msg.Body == nil {
		return
	}
	ch, ok := c.pending.Load(*attr.StringValue)
	if !ok {
		return
	}

	wire, err := base64.StdEncoding.DecodeString(*msg.Body)
	if err != nil {
		return
	}
	resp, err := http.ReadResponse(bufio.NewReader(bytes.NewReader(wire)), nil)
	if err != nil {
		return
	}

	select {
	case ch.(chan *http.Response) <- resp:
	default:
	}
}

func (c *Client) send(ctx context.Context, req *http.Request, correlationID string, withReply bool) error {
	var buf bytes.Buffer
	if err := req.Write(&buf); err != nil {
		return fmt.Errorf("sqsclient: encode request: %w", err)
	}

	attrs := map[string]types.MessageAttributeValue{
		lambda.AttrCorrelationID: {DataType: aws.String("String"), StringValue: aws.String(correlationID)},
	}
	if withReply {
		attrs[lambda.AttrReplyTo] = types.MessageAttributeValue{DataType: aws.String("String"), StringValue: aws.String(c.ReplyQueue)}
	}

	_, err := c.SQSClient.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:          aws.String(c.RequestQueue),
		MessageBody:       aws.String(base64.StdEncoding.EncodeToString(buf.Bytes())),
		MessageAttributes: attrs,
	})
	if err != nil {
		return fmt.Errorf("sqsclient: send: %w", err)
	}
	return nil
}

// Send enqueues req without waiting for a reply.
func (c *Client) Send(ctx context.Context, req *http.Request) error {
	return c.send(ctx, req, uuid.NewString(), false)
}

// Call enqueues req and waits for the module's response on the reply queue.
func (c *Client) Call(ctx context.Context, req *http.Request) (*http.Response, error) {
	if c.ReplyQueue == "" {
		return nil, ErrNoReplyQueue
	}

	correlationID := uuid.NewString()
	ch := make(chan *http.Response, 1)
	c.pending.Store(correlationID, ch)
	defer c.pending.Delete(correlationID)

	if err := c.send(ctx, req, correlationID, true); err != nil {
		return nil, err
	}

	if _, ok := ctx.Deadline(); !ok && c.DefaultTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.DefaultTimeout)
		defer cancel()
	}

	select {
	case resp := <-ch:
		return resp, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("sqsclient: waiting for reply %s: %w", correlationID, ctx.Err())
	}
}
