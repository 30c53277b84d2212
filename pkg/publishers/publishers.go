package publishers

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/olerom/formula/pkg/registryfile"
)

const (
	// Supported publisher types.
	TypeHTTP      = "http"
	TypeSQS       = "sqs"
	TypeSNS       = "sns"
	TypeGCPPubSub = "gcp_pubsub"

	httpDefaultMethod         = "POST"
	httpDefaultTimeoutSeconds = 5
)

type configFile struct {
	Publishers []PublisherConfig `json:"publishers" yaml:"publishers"`
}

// PublisherConfig is one entry of the publishers file. Exactly the block
// matching Type is read.
type PublisherConfig struct {
	ID        string               `json:"id" yaml:"id"`
	Type      string               `json:"type" yaml:"type"`
	Enabled   *bool                `json:"enabled" yaml:"enabled"`
	HTTP      *HTTPPublisherConfig `json:"http" yaml:"http"`
	SQS       *SQSPublisherConfig  `json:"sqs" yaml:"sqs"`
	SNS       *SNSPublisherConfig  `json:"sns" yaml:"sns"`
	GCPPubSub *GCPPubSubConfig     `json:"gcp_pubsub" yaml:"gcp_pubsub"`
}

// HTTPPublisherConfig holds generic HTTP sink settings.
type HTTPPublisherConfig struct {
	URL            string            `json:"url" yaml:"url"`
	Method         string            `json:"method" yaml:"method"`
	Headers        map[string]string `json:"headers" yaml:"headers"`
	TimeoutSeconds int               `json:"timeout_seconds" yaml:"timeout_seconds"`
}

// AWSConfig is shared by the SQS and SNS blocks. Keys are optional; without
// them the default AWS credential chain applies.
type AWSConfig struct {
	Region          string `json:"region" yaml:"region"`
	Endpoint        string `json:"endpoint" yaml:"endpoint"`
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key"`
	SessionToken    string `json:"session_token" yaml:"session_token"`
}

// SQSPublisherConfig holds AWS SQS specific settings.
type SQSPublisherConfig struct {
	QueueURL  string `json:"uri" yaml:"uri"`
	AWSConfig `json:",inline" yaml:",inline"`
}

// SNSPublisherConfig holds AWS SNS specific settings.
type SNSPublisherConfig struct {
	TopicARN  string `json:"topic_arn" yaml:"topic_arn"`
	AWSConfig `json:",inline" yaml:",inline"`
}

// GCPPubSubConfig holds Google Cloud Pub/Sub settings.
type GCPPubSubConfig struct {
	ProjectID       string `json:"project_id" yaml:"project_id"`
	Topic           string `json:"topic" yaml:"topic"`
	CredentialsFile string `json:"credentials_file" yaml:"credentials_file"`
}

// ConfigRegistry is the validated content of a publishers file. It is read-only
// after LoadRegistry returns.
type ConfigRegistry struct {
	publishers []PublisherConfig
	idx        map[string]int
}

// LoadRegistry loads the publisher registry from a YAML/JSON file.
func LoadRegistry(path string) (*ConfigRegistry, error) {
	var file configFile
	if err := registryfile.Decode(path, "publishers", &file); err != nil {
		return nil, err
	}
	if len(file.Publishers) == 0 {
		return nil, errors.New("publishers file contains no publishers entries")
	}

	reg := &ConfigRegistry{idx: make(map[string]int, len(file.Publishers))}
	for i, raw := range file.Publishers {
		cfg := sanitizePublisherConfig(raw)
		if err := validatePublisherConfig(cfg); err != nil {
			return nil, fmt.Errorf("publishers[%d]: %w", i, err)
		}
		if _, dup := reg.idx[cfg.ID]; dup {
			return nil, fmt.Errorf("duplicate publisher id %q", cfg.ID)
		}
		reg.idx[cfg.ID] = len(reg.publishers)
		reg.publishers = append(reg.publishers, cfg)
	}
	return reg, nil
}

func sanitizePublisherConfig(cfg PublisherConfig) PublisherConfig {
	cfg.ID = strings.TrimSpace(cfg.ID)
	cfg.Type = strings.ToLower(strings.TrimSpace(cfg.Type))
	if cfg.Enabled == nil {
		enabled := true
		cfg.Enabled = &enabled
	}
	if cfg.HTTP != nil {
		c := cfg.HTTP.normalize()
		cfg.HTTP = &c
	}
	if cfg.SQS != nil {
		c := *cfg.SQS
		c.QueueURL = strings.TrimSpace(c.QueueURL)
		c.AWSConfig = c.AWSConfig.normalize()
		cfg.SQS = &c
	}
	if cfg.SNS != nil {
		c := *cfg.SNS
		c.TopicARN = strings.TrimSpace(c.TopicARN)
		c.AWSConfig = c.AWSConfig.normalize()
		cfg.SNS = &c
	}
	if cfg.GCPPubSub != nil {
		c := *cfg.GCPPubSub
		c.ProjectID = strings.TrimSpace(c.ProjectID)
		c.Topic = strings.TrimSpace(c.Topic)
		c.CredentialsFile = strings.TrimSpace(c.CredentialsFile)
		cfg.GCPPubSub = &c
	}
	return cfg
}

func (c HTTPPublisherConfig) normalize() HTTPPublisherConfig {
	c.URL = strings.TrimSpace(c.URL)
	c.Method = strings.ToUpper(strings.TrimSpace(c.Method))
	if c.Method == "" {
		c.Method = httpDefaultMethod
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = httpDefaultTimeoutSeconds
	}
	c.Headers = sanitizeHeaders(c.Headers)
	return c
}

func (c AWSConfig) normalize() AWSConfig {
	for _, f := range []*string{&c.Region, &c.Endpoint, &c.AccessKeyID, &c.SecretAccessKey, &c.SessionToken} {
		*f = strings.TrimSpace(*f)
	}
	return c
}

// sanitizeHeaders trims names and values and drops entries where either is empty.
func sanitizeHeaders(headers map[string]string) map[string]string {
	var out map[string]string
	for k, v := range headers {
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if k == "" || v == "" {
			continue
		}
		if out == nil {
			out = make(map[string]string, len(headers))
		}
		out[k] = v
	}
	return out
}

// validatePublisherConfig checks that the block for cfg.Type is present and complete.
func validatePublisherConfig(cfg PublisherConfig) error {
	if cfg.ID == "" {
		return errors.New("id is required")
	}

	var missing []string
	switch cfg.Type {
	case "":
		return fmt.Errorf("type is required for publisher %q", cfg.ID)
	case TypeHTTP:
		if cfg.HTTP == nil {
			return fmt.Errorf("http config required for publisher %q", cfg.ID)
		}
		missing = requireFields("http", map[string]string{"url": cfg.HTTP.URL})
	case TypeSQS:
		if cfg.SQS == nil {
			return fmt.Errorf("sqs config required for publisher %q", cfg.ID)
		}
		missing = requireFields("sqs", map[string]string{"uri": cfg.SQS.QueueURL, "region": cfg.SQS.Region})
	case TypeSNS:
		if cfg.SNS == nil {
			return fmt.Errorf("sns config required for publisher %q", cfg.ID)
		}
		missing = requireFields("sns", map[string]string{"topic_arn": cfg.SNS.TopicARN, "region": cfg.SNS.Region})
	case TypeGCPPubSub:
		if cfg.GCPPubSub == nil {
			return fmt.Errorf("gcp_pubsub config required for publisher %q", cfg.ID)
		}
		missing = requireFields("gcp_pubsub", map[string]string{"project_id": cfg.GCPPubSub.ProjectID, "topic": cfg.GCPPubSub.Topic})
	default:
		return fmt.Errorf("unsupported publisher type %q for publisher %q", cfg.Type, cfg.ID)
	}

	if len(missing) > 0 {
		return fmt.Errorf("%s required for publisher %q", strings.Join(missing, ", "), cfg.ID)
	}
	return nil
}

// requireFields returns the dotted names of empty fields in sorted order.
func requireFields(block string, fields map[string]string) []string {
	var missing []string
	for name, val := range fields {
		if val == "" {
			missing = append(missing, block+"."+name)
		}
	}
	sort.Strings(missing)
	return missing
}

// ByID returns the publisher config by id.
func (r *ConfigRegistry) ByID(id string) (PublisherConfig, bool) {
	if r == nil {
		return PublisherConfig{}, false
	}
	i, ok := r.idx[strings.TrimSpace(id)]
	if !ok {
		return PublisherConfig{}, false
	}
	return r.publishers[i], true
}

// All returns a copy of every configured publisher in file order.
func (r *ConfigRegistry) All() []PublisherConfig {
	if r == nil {
		return nil
	}
	return append([]PublisherConfig(nil), r.publishers...)
}

// Enabled returns the publishers that are switched on.
func (r *ConfigRegistry) Enabled() []PublisherConfig {
	var out []PublisherConfig
	for _, cfg := range r.All() {
		if cfg.EnabledValue() {
			out = append(out, cfg)
		}
	}
	return out
}

// EnabledValue returns enabled flag defaulting to true.
func (cfg PublisherConfig) EnabledValue() bool {
	return cfg.Enabled == nil || *cfg.Enabled
}
