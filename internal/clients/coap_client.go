package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/plgd-dev/go-coap/v3/message"
	"github.com/plgd-dev/go-coap/v3/udp"
	udpClient "github.com/plgd-dev/go-coap/v3/udp/client"

	"github.com/nimbusmesh/controller/internal/ir"
)

// coapNodeClient implements NodeClient over CoAP (github.com/plgd-dev/go-coap/v3),
// for agent URLs with the coap:// scheme (spec.md §6). The retrieved corpus
// carries no CoAP library; this is the standard real Go CoAP client.
type coapNodeClient struct {
	conn *udpClient.Conn
}

func newCoAPNodeClient(agentURL string) (NodeClient, error) {
	addr := strings.TrimPrefix(agentURL, "coap://")
	conn, err := udp.Dial(addr)
	if err != nil {
		return nil, fmt.Errorf("dial coap node %s: %w", agentURL, err)
	}
	return &coapNodeClient{conn: conn}, nil
}

func (c *coapNodeClient) post(ctx context.Context, path string, req, resp any) error {
	body, err := json.Marshal(req)
	if err != nil {
		return err
	}
	m, err := c.conn.Post(ctx, path, message.AppJSON, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("coap post %s: %w", path, err)
	}
	if resp == nil {
		return nil
	}
	rd, err := m.ReadBody()
	if err != nil {
		return err
	}
	if len(rd) == 0 {
		return nil
	}
	return json.Unmarshal(rd, resp)
}

var _ io.Closer = (*coapNodeClient)(nil)

func (c *coapNodeClient) StartFunction(ctx context.Context, req StartFunctionRequest) error {
	return c.post(ctx, "/function_instance/start", req, nil)
}

func (c *coapNodeClient) PatchFunction(ctx context.Context, req PatchRequest) error {
	return c.post(ctx, "/function_instance/patch", req, nil)
}

func (c *coapNodeClient) StopFunction(ctx context.Context, id ir.InstanceId) error {
	return c.post(ctx, "/function_instance/stop", id, nil)
}

func (c *coapNodeClient) StartResource(ctx context.Context, req StartResourceRequest) error {
	return c.post(ctx, "/resource_configuration/start", req, nil)
}

func (c *coapNodeClient) PatchResource(ctx context.Context, req PatchRequest) error {
	return c.post(ctx, "/resource_configuration/patch", req, nil)
}

func (c *coapNodeClient) StopResource(ctx context.Context, id ir.InstanceId) error {
	return c.post(ctx, "/resource_configuration/stop", id, nil)
}

func (c *coapNodeClient) StartProxy(ctx context.Context, req StartProxyRequest) error {
	return c.post(ctx, "/proxy_instance/start", req, nil)
}

func (c *coapNodeClient) PatchProxy(ctx context.Context, req StartProxyRequest) error {
	return c.post(ctx, "/proxy_instance/patch", req, nil)
}

func (c *coapNodeClient) StopProxy(ctx context.Context, id ir.InstanceId) error {
	return c.post(ctx, "/proxy_instance/stop", id, nil)
}

func (c *coapNodeClient) CreateLink(ctx context.Context, req CreateLinkRequest) error {
	return c.post(ctx, "/link_instance/create", req, nil)
}

func (c *coapNodeClient) RemoveLink(ctx context.Context, linkID ir.LinkInstanceId) error {
	return c.post(ctx, "/link_instance/remove", linkID, nil)
}

func (c *coapNodeClient) UpdatePeers(ctx context.Context, update PeerUpdate) error {
	return c.post(ctx, "/node_management/update_peers", update, nil)
}

func (c *coapNodeClient) KeepAlive(ctx context.Context) (HealthStatus, error) {
	var resp HealthStatus
	if err := c.post(ctx, "/node_management/keep_alive", struct{}{}, &resp); err != nil {
		return HealthStatus{}, err
	}
	return resp, nil
}

func (c *coapNodeClient) Close() error {
	return c.conn.Close()
}
