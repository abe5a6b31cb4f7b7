package cache

import (
	"context"
	"crypto/tls"
	"sync"

	"timebridge/internal/config"

	"github.com/valkey-io/valkey-go"
)

var (
	once         sync.Once
	valkeyClient valkey.Client
)

func GetCache() valkey.Client {
	once.Do(func() {
		env := config.GetEnv()

		options := valkey.ClientOption{
			InitAddress: []string{env.ValkeyHost + ":" + env.ValkeyPort},
			Username:    env.ValkeyUsername,
			Password:    env.ValkeyPassword,
		}

		if env.ValkeyIsSsl {
			options.TLSConfig = &tls.Config{ServerName: env.ValkeyHost}
		}

		client, err := valkey.NewClient(options)
		if err != nil {
			panic(err)
		}

		valkeyClient = client
	})

	return valkeyClient
}

func Ping(ctx context.Context) error {
	client := GetCache()
	return client.Do(ctx, client.B().Ping().Build()).Error()
}
