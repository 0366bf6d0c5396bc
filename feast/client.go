package feast

import (
	"context"
	"strconv"
	"strings"
	"time"
)

// Client 是 Feast Feature Store 的在线特征客户端接口。
//
// Feast 的在线存储（Online Store）提供低延迟的实时特征查询，
// 在本系统中用于补充画像之外的离线特征（如长周期行为统计、模型分）。
//
// 参考：https://github.com/feast-dev/feast
type Client interface {
	// GetOnlineFeatures 获取在线特征。
	//
	//   - features: 特征名称列表，例如 ["user_stats:brand_loyalty", "product_stats:ctr_7d"]
	//   - entityRows: 实体行，例如 [{"user_id": "u1001"}] 或 [{"product_id": "p2001"}]
	GetOnlineFeatures(ctx context.Context, req *GetOnlineFeaturesRequest) (*GetOnlineFeaturesResponse, error)

	// Close 关闭客户端连接
	Close() error
}

// GetOnlineFeaturesRequest 获取在线特征请求
type GetOnlineFeaturesRequest struct {
	// Features 特征名称列表，例如 ["user_stats:brand_loyalty"]
	Features []string

	// EntityRows 实体行，例如 [{"user_id": "u1001"}, {"user_id": "u1002"}]
	EntityRows []map[string]interface{}

	// Project 项目名称（可选，为空时使用客户端默认项目）
	Project string
}

// GetOnlineFeaturesResponse 获取在线特征响应
type GetOnlineFeaturesResponse struct {
	// FeatureVectors 特征向量列表，每个元素对应一个实体行
	FeatureVectors []FeatureVector
}

// FeatureVector 特征向量
type FeatureVector struct {
	// Values 特征值，key 为特征名称
	Values map[string]interface{}

	// EntityRow 对应的实体行
	EntityRow map[string]interface{}
}

// ClientOption Feast 客户端配置选项
type ClientOption func(*ClientConfig)

// ClientConfig Feast 客户端配置
type ClientConfig struct {
	// Timeout 单次请求超时时间
	Timeout time.Duration

	// Token 静态 Token 认证（可选）
	Token string
}

// WithTimeout 配置选项：设置超时时间
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *ClientConfig) {
		c.Timeout = timeout
	}
}

// WithStaticToken 配置选项：使用静态 Token 认证
func WithStaticToken(token string) ClientOption {
	return func(c *ClientConfig) {
		c.Token = token
	}
}

// ParseEndpoint 解析端点地址，返回 host 和 port。
// 支持 "localhost:6565" 与 "grpc://localhost:6565" 两种写法；无端口时 port 为 0。
func ParseEndpoint(endpoint string) (string, int) {
	endpoint = strings.TrimPrefix(endpoint, "grpc://")

	host, portStr, ok := strings.Cut(endpoint, ":")
	if ok {
		if port, err := strconv.Atoi(portStr); err == nil {
			return host, port
		}
	}
	return endpoint, 0
}
