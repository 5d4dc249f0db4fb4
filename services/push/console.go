package pushsvc

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/trezcool/darasa/core"
)

type consoleService struct {
	disableOutput bool
}

var _ core.PushService = (*consoleService)(nil)

func NewConsoleService() core.PushService {
	return &consoleService{}
}

func (svc consoleService) Dispatch(_ context.Context, msg core.PushMessage) error {
	if svc.disableOutput {
		return nil
	}
	body := new(strings.Builder)
	_, _ = fmt.Fprintf(body, "Push[section=%s] %s\r\n", msg.SectionID, msg.Title)
	_, _ = fmt.Fprintf(body, "%s\r\n", msg.Message)
	_, _ = fmt.Fprintf(body, "Recipients: %s\r\n", strings.Join(msg.RecipientIDs, ", "))
	log.Println(body.String())
	return nil
}

// ServiceMock records dispatched messages for inspection in tests.
type ServiceMock struct {
	mu         sync.Mutex
	Dispatched []core.PushMessage
	Err        error // returned by Dispatch when set
}

var _ core.PushService = (*ServiceMock)(nil)

func NewServiceMock() *ServiceMock {
	return &ServiceMock{}
}

func (svc *ServiceMock) Dispatch(_ context.Context, msg core.PushMessage) error {
	if svc.Err != nil {
		return svc.Err
	}
	svc.mu.Lock()
	svc.Dispatched = append(svc.Dispatched, msg)
	svc.mu.Unlock()
	return nil
}
