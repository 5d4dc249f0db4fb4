package pushsvc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/trezcool/darasa/core"
)

// gatewayService forwards dispatch requests to an external push gateway
// (FCM proxy, websocket hub, ..) over HTTP.
type gatewayService struct {
	url    string
	apiKey string
	logger core.Logger
}

var _ core.PushService = (*gatewayService)(nil)

func NewGatewayService(conf *core.Config, logger core.Logger) core.PushService {
	return &gatewayService{
		url:    conf.Push.GatewayURL,
		apiKey: conf.Push.APIKey,
		logger: logger,
	}
}

func (svc gatewayService) Dispatch(ctx context.Context, msg core.PushMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return errors.Wrap(err, "encoding push message")
	}

	req := rest.Request{
		Method:  rest.Post,
		BaseURL: svc.url,
		Headers: map[string]string{
			"Authorization": "Bearer " + svc.apiKey,
			"Content-Type":  "application/json",
		},
		Body: body,
	}
	res, err := rest.SendWithContext(ctx, req)
	if err != nil {
		return errors.Wrap(err, "sending push")
	}
	if res.StatusCode >= http.StatusBadRequest {
		svc.logger.Warn(fmt.Sprintf("push gateway - status: %d - Body: %s", res.StatusCode, res.Body))
		return errors.Errorf("push gateway returned %d", res.StatusCode)
	}
	return nil
}
