package feast

import (
	"context"
	"fmt"
	"time"

	feastsdk "github.com/feast-dev/feast/sdk/go"
	feasttypes "github.com/feast-dev/feast/sdk/go/protos/feast/types"
)

// GrpcClient 是基于官方 Feast Go SDK 的 gRPC 客户端实现。
//
// 领域层只依赖 Client 接口（client.go），GrpcClient 属于基础设施层实现，
// 可替换为自建的 HTTP 客户端或测试替身。
type GrpcClient struct {
	client *feastsdk.GrpcClient

	// Project 默认项目名称
	Project string

	// Endpoint 服务端点（用于日志展示）
	Endpoint string
}

// NewGrpcClient 创建一个基于官方 SDK 的 Feast gRPC 客户端。
//
//   - host: Feature Server 主机地址，例如 "localhost"
//   - port: gRPC 端口，0 时使用默认 6565
//   - project: 项目名称，例如 "shoprec"
func NewGrpcClient(host string, port int, project string, opts ...ClientOption) (*GrpcClient, error) {
	if port == 0 {
		port = 6565
	}

	cfg := &ClientConfig{
		Timeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	var client *feastsdk.GrpcClient
	var err error
	if cfg.Token != "" {
		security := feastsdk.SecurityConfig{
			EnableTLS:  false,
			Credential: feastsdk.NewStaticCredential(cfg.Token),
		}
		client, err = feastsdk.NewSecureGrpcClient(host, port, security)
	} else {
		client, err = feastsdk.NewGrpcClient(host, port)
	}
	if err != nil {
		return nil, fmt.Errorf("connect feast server: %w", err)
	}

	return &GrpcClient{
		client:   client,
		Project:  project,
		Endpoint: fmt.Sprintf("%s:%d", host, port),
	}, nil
}

// NewClient 根据 endpoint 创建客户端，是推荐的入口。
//
//	client, err := feast.NewClient("localhost:6565", "shoprec")
func NewClient(endpoint, project string, opts ...ClientOption) (Client, error) {
	host, port := ParseEndpoint(endpoint)
	return NewGrpcClient(host, port, project, opts...)
}

// GetOnlineFeatures 获取在线特征（实现 Client 接口）
func (c *GrpcClient) GetOnlineFeatures(ctx context.Context, req *GetOnlineFeaturesRequest) (*GetOnlineFeaturesResponse, error) {
	if len(req.Features) == 0 {
		return nil, fmt.Errorf("features are required")
	}
	if len(req.EntityRows) == 0 {
		return nil, fmt.Errorf("entity rows are required")
	}

	project := req.Project
	if project == "" {
		project = c.Project
	}
	if project == "" {
		return nil, fmt.Errorf("project is required")
	}

	// SDK 的 Row 类型是 map[string]*types.Value
	entityRows := make([]feastsdk.Row, len(req.EntityRows))
	for i, row := range req.EntityRows {
		entityRow := make(feastsdk.Row, len(row))
		for k, v := range row {
			entityRow[k] = toSDKValue(v)
		}
		entityRows[i] = entityRow
	}

	sdkResp, err := c.client.GetOnlineFeatures(ctx, &feastsdk.OnlineFeaturesRequest{
		Features: req.Features,
		Entities: entityRows,
		Project:  project,
	})
	if err != nil {
		return nil, fmt.Errorf("feast get online features: %w", err)
	}

	rows := sdkResp.Rows()
	if len(rows) != len(req.EntityRows) {
		return nil, fmt.Errorf("response row count mismatch: expected %d, got %d", len(req.EntityRows), len(rows))
	}

	vectors := make([]FeatureVector, len(rows))
	for i, row := range rows {
		values := make(map[string]interface{}, len(req.Features))
		for _, name := range req.Features {
			if val, ok := row[name]; ok {
				if converted := fromSDKValue(val); converted != nil {
					values[name] = converted
				}
			}
		}
		vectors[i] = FeatureVector{
			Values:    values,
			EntityRow: req.EntityRows[i],
		}
	}

	return &GetOnlineFeaturesResponse{FeatureVectors: vectors}, nil
}

// Close 关闭客户端连接（实现 Client 接口）。
// 官方 SDK 没有显式的 Close 方法，连接由 gRPC 库管理。
func (c *GrpcClient) Close() error {
	c.client = nil
	return nil
}

// toSDKValue 将 interface{} 转换为 SDK 的 *types.Value
func toSDKValue(v interface{}) *feasttypes.Value {
	switch val := v.(type) {
	case string:
		return feastsdk.StrVal(val)
	case int:
		return feastsdk.Int64Val(int64(val))
	case int64:
		return feastsdk.Int64Val(val)
	case int32:
		return feastsdk.Int64Val(int64(val))
	case float64:
		return feastsdk.DoubleVal(val)
	case float32:
		return feastsdk.FloatVal(val)
	case bool:
		return feastsdk.BoolVal(val)
	case []byte:
		return feastsdk.BytesVal(val)
	default:
		return feastsdk.StrVal(fmt.Sprintf("%v", val))
	}
}

// fromSDKValue 从 SDK 值提取 Go 原生值，数值统一为 float64
func fromSDKValue(val *feasttypes.Value) interface{} {
	if val == nil {
		return nil
	}

	switch v := val.Val.(type) {
	case *feasttypes.Value_StringVal:
		return v.StringVal
	case *feasttypes.Value_Int32Val:
		return float64(v.Int32Val)
	case *feasttypes.Value_Int64Val:
		return float64(v.Int64Val)
	case *feasttypes.Value_FloatVal:
		return float64(v.FloatVal)
	case *feasttypes.Value_DoubleVal:
		return v.DoubleVal
	case *feasttypes.Value_BoolVal:
		if v.BoolVal {
			return float64(1)
		}
		return float64(0)
	case *feasttypes.Value_BytesVal:
		return string(v.BytesVal)
	default:
		return nil
	}
}

var _ Client = (*GrpcClient)(nil)
