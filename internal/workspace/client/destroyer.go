package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/smallbiznis/entitle/internal/config"
	"github.com/smallbiznis/entitle/internal/workspace/domain"
	"go.uber.org/zap"
)

type destroyer struct {
	baseURL string
	client  *http.Client
	log     *zap.Logger
}

// NewDestroyer returns an HTTP client for the workspace product's teardown
// endpoint.
func NewDestroyer(cfg config.Config, log *zap.Logger) domain.Destroyer {
	return &destroyer{
		baseURL: strings.TrimRight(cfg.WorkspaceServiceURL, "/"),
		client:  &http.Client{Timeout: 12 * time.Second},
		log:     log.Named("workspace.destroyer"),
	}
}

func (d *destroyer) Destroy(ctx context.Context, ownerUUID string) error {
	ownerUUID = strings.TrimSpace(ownerUUID)
	if ownerUUID == "" {
		return domain.ErrDestroyFailed
	}

	body, err := json.Marshal(map[string]string{"ownerUuid": ownerUUID})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/v1/workspaces/destroy", strings.NewReader(string(body)))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusBadRequest && resp.StatusCode != http.StatusNotFound {
		d.log.Error("workspace destroy rejected",
			zap.String("owner_uuid", ownerUUID),
			zap.Int("status", resp.StatusCode),
		)
		return fmt.Errorf("%w: status %d", domain.ErrDestroyFailed, resp.StatusCode)
	}

	return nil
}
