package mongoutil

import (
	"context"
	"time"

	"Connectify/tools/errs"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Config represents the MongoDB configuration.
type Config struct {
	Uri         string
	Address     []string
	Database    string
	Username    string
	Password    string
	AuthSource  string
	MaxPoolSize int
	MaxRetry    int
}

func (c *Config) validateAndSetDefaults() error {
	if c.Uri == "" && len(c.Address) == 0 {
		return errs.ErrStore.WrapMsg("mongo uri or address is required")
	}
	if c.Database == "" {
		return errs.ErrStore.WrapMsg("mongo database is required")
	}
	if c.MaxPoolSize <= 0 {
		c.MaxPoolSize = defaultMaxPoolSize
	}
	if c.MaxRetry <= 0 {
		c.MaxRetry = defaultMaxRetry
	}
	if c.AuthSource == "" {
		c.AuthSource = "admin"
	}
	return nil
}

func applyConfigToOptions(cfg *Config) *options.ClientOptions {
	var opts *options.ClientOptions
	if cfg.Uri != "" {
		// A full URI may carry its own params (?authSource=... etc).
		opts = options.Client().ApplyURI(cfg.Uri)
	} else {
		opts = options.Client().SetHosts(cfg.Address)
	}

	opts.SetMaxPoolSize(uint64(cfg.MaxPoolSize))

	// Explicit credentials override whatever the URI carried.
	if cfg.Username != "" {
		opts.SetAuth(options.Credential{
			Username:   cfg.Username,
			Password:   cfg.Password,
			AuthSource: cfg.AuthSource,
		})
	}
	return opts
}

type Client struct {
	db *mongo.Database
}

func (c *Client) GetDB() *mongo.Database {
	return c.db
}

// NewMongoDB initializes a new MongoDB connection.
func NewMongoDB(ctx context.Context, config *Config) (*Client, error) {
	if err := config.validateAndSetDefaults(); err != nil {
		return nil, err
	}
	opts := applyConfigToOptions(config)

	var (
		cli *mongo.Client
		err error
	)
	for i := 0; i < config.MaxRetry; i++ {
		cli, err = connectMongo(ctx, opts)
		if err != nil && shouldRetry(ctx, err) {
			time.Sleep(time.Second / 2)
			continue
		}
		break
	}
	if err != nil {
		return nil, errs.WrapStore(err, "connect mongo")
	}
	return &Client{db: cli.Database(config.Database)}, nil
}

func connectMongo(ctx context.Context, opts *options.ClientOptions) (*mongo.Client, error) {
	cli, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := cli.Ping(ctx, nil); err != nil {
		return nil, err
	}
	return cli, nil
}
