package session

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gocql/gocql"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/cassandra-go/cassandra"
)

// Config for a Session.
type Config struct {
	Addresses                string        `yaml:"addresses"`
	Port                     int           `yaml:"port"`
	Keyspace                 string        `yaml:"keyspace"`
	Consistency              string        `yaml:"consistency"`
	Timeout                  time.Duration `yaml:"timeout"`
	ConnectTimeout           time.Duration `yaml:"connect_timeout"`
	NumRetries               int           `yaml:"num_retries"`
	DisableInitialHostLookup bool          `yaml:"disable_initial_host_lookup"`

	SSL              bool   `yaml:"ssl"`
	HostVerification bool   `yaml:"host_verification"`
	CAPath           string `yaml:"ca_path"`
	CertPath         string `yaml:"cert_path"`
	KeyPath          string `yaml:"key_path"`

	Auth     bool   `yaml:"auth"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// RegisterFlags adds the flags required to config this to the given FlagSet.
func (cfg *Config) RegisterFlags(f *flag.FlagSet) {
	cfg.RegisterFlagsWithPrefix("cassandra.", f)
}

// RegisterFlagsWithPrefix adds the flags required to config this to the given
// FlagSet, with every flag name prefixed.
func (cfg *Config) RegisterFlagsWithPrefix(prefix string, f *flag.FlagSet) {
	f.StringVar(&cfg.Addresses, prefix+"addresses", "127.0.0.1", "Comma-separated hostnames or ips of Cassandra instances.")
	f.IntVar(&cfg.Port, prefix+"port", 9042, "Port that Cassandra is running on.")
	f.StringVar(&cfg.Keyspace, prefix+"keyspace", "", "Default keyspace.")
	f.StringVar(&cfg.Consistency, prefix+"consistency", "QUORUM", "Consistency level used when a statement sets none.")
	f.DurationVar(&cfg.Timeout, prefix+"timeout", 600*time.Millisecond, "Timeout of a single request.")
	f.DurationVar(&cfg.ConnectTimeout, prefix+"connect-timeout", 5*time.Second, "Timeout when connecting to Cassandra.")
	f.IntVar(&cfg.NumRetries, prefix+"num-retries", 3, "Retries of a failed request when a statement sets no retry policy.")
	f.BoolVar(&cfg.DisableInitialHostLookup, prefix+"disable-initial-host-lookup", false, "Instruct the driver to not attempt to get host info from the system.peers table.")
	f.BoolVar(&cfg.SSL, prefix+"ssl", false, "Use SSL when connecting to Cassandra instances.")
	f.BoolVar(&cfg.HostVerification, prefix+"host-verification", true, "Require SSL certificate validation.")
	f.StringVar(&cfg.CAPath, prefix+"ca-path", "", "Path to certificate file to verify the peer.")
	f.StringVar(&cfg.CertPath, prefix+"tls-cert-path", "", "Path to the client certificate file.")
	f.StringVar(&cfg.KeyPath, prefix+"tls-key-path", "", "Path to the client key file.")
	f.BoolVar(&cfg.Auth, prefix+"auth", false, "Enable password authentication when connecting to Cassandra.")
	f.StringVar(&cfg.Username, prefix+"username", "", "Username to use when connecting to Cassandra.")
	f.StringVar(&cfg.Password, prefix+"password", "", "Password to use when connecting to Cassandra.")
}

// Validate checks the config for errors.
func (cfg *Config) Validate() error {
	if len(cfg.hosts()) == 0 {
		return errors.New("no cassandra addresses configured")
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return errors.Errorf("invalid cassandra port %d", cfg.Port)
	}
	if _, err := cassandra.ParseConsistency(cfg.Consistency); err != nil {
		return errors.WithStack(err)
	}
	if cfg.NumRetries < 0 {
		return errors.Errorf("invalid number of retries %d", cfg.NumRetries)
	}
	if cfg.Auth && cfg.Username == "" {
		return errors.New("password authentication requires a username")
	}
	if (cfg.CertPath == "") != (cfg.KeyPath == "") {
		return errors.New("tls cert path and key path must be set together")
	}
	return nil
}

// ParseConfig reads a YAML config file. Fields missing from the file keep the
// values already in cfg.
func ParseConfig(path string, cfg *Config) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read config")
	}
	if err := yaml.Unmarshal(buf, cfg); err != nil {
		return errors.Wrapf(err, "parse config %s", path)
	}
	return cfg.Validate()
}

func (cfg *Config) hosts() []string {
	var hosts []string
	for _, h := range strings.Split(cfg.Addresses, ",") {
		if h = strings.TrimSpace(h); h != "" {
			hosts = append(hosts, h)
		}
	}
	return hosts
}

func (cfg *Config) cluster() (*gocql.ClusterConfig, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	consistency, err := cassandra.ParseConsistency(cfg.Consistency)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	cluster := gocql.NewCluster(cfg.hosts()...)
	cluster.Port = cfg.Port
	cluster.Keyspace = cfg.Keyspace
	cluster.Consistency = gocql.Consistency(consistency)
	cluster.ProtoVersion = 4
	cluster.Timeout = cfg.Timeout
	cluster.ConnectTimeout = cfg.ConnectTimeout
	cluster.RetryPolicy = &gocql.SimpleRetryPolicy{NumRetries: cfg.NumRetries}
	cluster.DisableInitialHostLookup = cfg.DisableInitialHostLookup

	if cfg.SSL {
		cluster.SslOpts = &gocql.SslOptions{
			CaPath:                 cfg.CAPath,
			CertPath:               cfg.CertPath,
			KeyPath:                cfg.KeyPath,
			EnableHostVerification: cfg.HostVerification,
		}
	}
	if cfg.Auth {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: cfg.Username,
			Password: cfg.Password,
		}
	}
	return cluster, nil
}

func (cfg Config) String() string {
	return fmt.Sprintf("cassandra://%s:%d/%s", cfg.Addresses, cfg.Port, cfg.Keyspace)
}
