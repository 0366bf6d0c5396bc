package feast

import (
	"context"

	"github.com/rushteam/shoprec/core"
	"github.com/rushteam/shoprec/pkg/conv"
)

// OnlineFeatureService 将 Feast 在线特征查询适配为 core.FeatureService。
//
// 实体约定：用户实体 key 为 "user_id"，商品实体 key 为 "product_id"，
// 可通过字段覆盖。非数值特征会被丢弃（FeatureService 只承载数值特征）。
type OnlineFeatureService struct {
	Client Client

	// UserFeatures 用户侧特征名称列表，例如 ["user_stats:brand_loyalty"]
	UserFeatures []string

	// ProductFeatures 商品侧特征名称列表，例如 ["product_stats:ctr_7d"]
	ProductFeatures []string

	// UserEntityKey 用户实体 key，默认 "user_id"
	UserEntityKey string

	// ProductEntityKey 商品实体 key，默认 "product_id"
	ProductEntityKey string
}

var _ core.FeatureService = (*OnlineFeatureService)(nil)

func (s *OnlineFeatureService) Name() string { return "feast" }

func (s *OnlineFeatureService) userKey() string {
	if s.UserEntityKey != "" {
		return s.UserEntityKey
	}
	return "user_id"
}

func (s *OnlineFeatureService) productKey() string {
	if s.ProductEntityKey != "" {
		return s.ProductEntityKey
	}
	return "product_id"
}

// GetUserFeatures 获取单个用户的在线特征
func (s *OnlineFeatureService) GetUserFeatures(ctx context.Context, userID string) (map[string]float64, error) {
	all, err := s.BatchGetUserFeatures(ctx, []string{userID})
	if err != nil {
		return nil, err
	}
	return all[userID], nil
}

// BatchGetUserFeatures 批量获取用户特征，一次网络往返
func (s *OnlineFeatureService) BatchGetUserFeatures(ctx context.Context, userIDs []string) (map[string]map[string]float64, error) {
	return s.batchGet(ctx, s.UserFeatures, s.userKey(), userIDs)
}

// GetItemFeatures 获取单个商品的在线特征
func (s *OnlineFeatureService) GetItemFeatures(ctx context.Context, itemID string) (map[string]float64, error) {
	all, err := s.BatchGetItemFeatures(ctx, []string{itemID})
	if err != nil {
		return nil, err
	}
	return all[itemID], nil
}

// BatchGetItemFeatures 批量获取商品特征，一次网络往返
func (s *OnlineFeatureService) BatchGetItemFeatures(ctx context.Context, itemIDs []string) (map[string]map[string]float64, error) {
	return s.batchGet(ctx, s.ProductFeatures, s.productKey(), itemIDs)
}

// Close 关闭底层客户端
func (s *OnlineFeatureService) Close(ctx context.Context) error {
	if s.Client == nil {
		return nil
	}
	return s.Client.Close()
}

func (s *OnlineFeatureService) batchGet(ctx context.Context, features []string, entityKey string, ids []string) (map[string]map[string]float64, error) {
	result := make(map[string]map[string]float64, len(ids))
	if len(features) == 0 || len(ids) == 0 {
		return result, nil
	}

	entityRows := make([]map[string]interface{}, len(ids))
	for i, id := range ids {
		entityRows[i] = map[string]interface{}{entityKey: id}
	}

	resp, err := s.Client.GetOnlineFeatures(ctx, &GetOnlineFeaturesRequest{
		Features:   features,
		EntityRows: entityRows,
	})
	if err != nil {
		return nil, err
	}

	for i, fv := range resp.FeatureVectors {
		if i >= len(ids) {
			break
		}
		values := make(map[string]float64, len(fv.Values))
		for name, raw := range fv.Values {
			if f, ok := conv.ToFloat64(raw); ok {
				values[name] = f
			}
		}
		result[ids[i]] = values
	}
	return result, nil
}
