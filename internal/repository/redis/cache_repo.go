package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/DRSN-tech/shop-orders/internal/cfg"
	"github.com/DRSN-tech/shop-orders/internal/domain"
	"github.com/DRSN-tech/shop-orders/internal/repository/redis/converter"
	"github.com/DRSN-tech/shop-orders/pkg/clients"
	"github.com/DRSN-tech/shop-orders/pkg/e"
	"github.com/DRSN-tech/shop-orders/pkg/logger"
	"github.com/jimlawless/whereami"
	r "github.com/redis/go-redis/v9"
)

// CacheRepo кэширует карточки товаров в Redis.
type CacheRepo struct {
	client *clients.RedisClient
	conv   converter.ProductConverter
	cfg    *cfg.RedisCfg
	logger logger.Logger
}

func NewCacheRepo(client *clients.RedisClient, conv converter.ProductConverter,
	cfg *cfg.RedisCfg, logger logger.Logger) *CacheRepo {
	return &CacheRepo{
		client: client,
		conv:   conv,
		cfg:    cfg,
		logger: logger,
	}
}

// GetProduct возвращает товар из кэша и текущую версию товара одним MGET.
// Промах и битая запись дают (nil, version, nil).
func (c *CacheRepo) GetProduct(ctx context.Context, id int64) (*domain.Product, int64, error) {
	key := productKey(id)

	values, err := c.client.Client.MGet(ctx, key, versionKey(id)).Result()
	if err != nil {
		return nil, 0, e.Wrap(whereami.WhereAmI(), err)
	}

	version, err := parseVersion(values[1])
	if err != nil {
		return nil, 0, e.Wrap(whereami.WhereAmI(), err)
	}

	raw, ok := values[0].(string)
	if !ok {
		return nil, version, nil
	}

	var model converter.ProductRedisModel
	if err := json.Unmarshal([]byte(raw), &model); err != nil {
		c.logger.Warnf("Redis unmarshal failed: %v", e.Wrap(whereami.WhereAmI(), err))
		c.drop(key)
		return nil, version, nil
	}

	if model.ID != id {
		c.logger.Warnf("Cache ID mismatch: key_id: %d, model_id: %d", id, model.ID)
		c.drop(key)
		return nil, version, nil
	}

	product, err := c.conv.ToEntity(&model)
	if err != nil {
		c.logger.Warnf("Cached product is corrupted: %v", e.Wrap(whereami.WhereAmI(), err))
		c.drop(key)
		return nil, version, nil
	}

	return product, version, nil
}

// setIfVersion: KEYS[1] карточка, KEYS[2] версия; ARGV: ожидаемая версия, данные, TTL в мс.
// Отсутствующая версия считается нулевой.
var setIfVersion = r.NewScript(`
local current = redis.call('GET', KEYS[2]) or '0'
if current ~= ARGV[1] then
	return 0
end
if tonumber(ARGV[3]) > 0 then
	redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
else
	redis.call('SET', KEYS[1], ARGV[2])
end
return 1
`)

// SetProduct кэширует товар на cfg.ProductTTL, если с момента чтения version товар не инвалидировали.
func (c *CacheRepo) SetProduct(ctx context.Context, product *domain.Product, version int64) error {
	data, err := json.Marshal(c.conv.ToRedisModel(product))
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	keys := []string{productKey(product.ID), versionKey(product.ID)}
	stored, err := setIfVersion.Run(ctx, c.client.Client, keys, version, data, c.cfg.ProductTTL.Milliseconds()).Int()
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	if stored == 0 {
		c.logger.Debugf("product %d changed since version %d, cache write skipped", product.ID, version)
	}

	return nil
}

// DeleteProducts удаляет товары из кэша и увеличивает их версии в одной транзакции MULTI/EXEC.
// Запоздавший SetProduct со старой версией после этого ничего не запишет.
func (c *CacheRepo) DeleteProducts(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = productKey(id)
	}

	_, err := c.client.Client.TxPipelined(ctx, func(pipe r.Pipeliner) error {
		for _, id := range ids {
			pipe.Incr(ctx, versionKey(id))
		}
		pipe.Del(ctx, keys...)
		return nil
	})
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (c *CacheRepo) drop(key string) {
	if err := c.client.Client.Del(context.Background(), key).Err(); err != nil {
		c.logger.Warnf("Redis del failed: %v", e.Wrap(whereami.WhereAmI(), err))
	}
}

// productKey возвращает Redis-ключ для одного товара
func productKey(id int64) string {
	return fmt.Sprintf("product:%d", id)
}

func versionKey(id int64) string {
	return fmt.Sprintf("product:%d:version", id)
}

func parseVersion(raw any) (int64, error) {
	s, ok := raw.(string)
	if !ok {
		return 0, nil
	}
	return strconv.ParseInt(s, 10, 64)
}
