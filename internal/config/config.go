package config

import (
	"log"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"ChiefOfStaff/internal/domain"
)

const (
	configPathEnv     = "CHIEF_OF_STAFF_CONFIG"
	geminiAPIKeyEnv   = "GEMINI_API_KEY"
	geminiModelEnv    = "GEMINI_MODEL"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
	gmailTokenEnv     = "GMAIL_ACCESS_TOKEN"
	imessageDBEnv     = "IMESSAGE_DB"
	outputDirEnv      = "CHIEF_OF_STAFF_OUTPUT"
	slackTokenPrefix  = "SLACK_TOKEN_"
)

// Config holds every setting the run needs. It is loaded once at process
// start and treated as read-only afterwards; adapters receive their slice of
// it through constructors, never through ambient lookups.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging"`
	Output   OutputConfig   `yaml:"output"`
	Window   WindowConfig   `yaml:"window"`
	Sources  SourcesConfig  `yaml:"sources"`
	Slack    SlackConfig    `yaml:"slack"`
	Telegram TelegramConfig `yaml:"telegram"`
	Gmail    GmailConfig    `yaml:"gmail"`
	IMessage IMessageConfig `yaml:"imessage"`
	Forum    ForumConfig    `yaml:"forum"`
	Arxiv    ArxivConfig    `yaml:"arxiv"`
	Grants   GrantsConfig   `yaml:"grants"`
	Scoring  ScoringConfig  `yaml:"scoring"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	GenAI    GenAIConfig    `yaml:"genai"`
	Retry    RetryConfig    `yaml:"retry"`
}

// LoggingConfig controls the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// OutputConfig names the directory for snapshot and briefing artifacts.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// WindowConfig sets the recency horizon for a run.
type WindowConfig struct {
	Hours int `yaml:"hours"`
}

// SourcesConfig lists the sources enabled by default; the --sources flag
// narrows a single run further.
type SourcesConfig struct {
	Enabled []string `yaml:"enabled"`
}

// SlackConfig maps workspace name to bot/user token.
type SlackConfig struct {
	Workspaces map[string]string `yaml:"workspaces"`
}

// TelegramConfig wires the bot used both as a message source and as an
// optional briefing delivery channel.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// GmailConfig carries the OAuth access token obtained out of band; token
// acquisition and refresh are not this program's concern.
type GmailConfig struct {
	AccessToken string `yaml:"accessToken"`
}

// IMessageConfig points at the local chat database.
type IMessageConfig struct {
	DBPath string `yaml:"dbPath"`
}

// ForumConfig describes the governance forum and the keywords that mark a
// topic as worth flagging.
type ForumConfig struct {
	URL      string   `yaml:"url"`
	Keywords []string `yaml:"keywords"`
}

// ArxivConfig holds the listing pages to crawl.
type ArxivConfig struct {
	Categories []CategoryConfig `yaml:"categories"`
}

// CategoryConfig is one listing endpoint.
type CategoryConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// GrantsConfig points at the grant-notice RSS feed.
type GrantsConfig struct {
	FeedURL string `yaml:"feedUrl"`
}

// ScoringConfig carries the rubric and both thresholds. Floor drops noise,
// ceiling tags high-signal items; the two are independent knobs.
type ScoringConfig struct {
	Floor   int                      `yaml:"floor"`
	Ceiling int                      `yaml:"ceiling"`
	Rubric  []domain.RubricCriterion `yaml:"rubric"`
}

// CatalogConfig describes the entity-catalog API used by lookup/list.
type CatalogConfig struct {
	BaseURL  string `yaml:"baseUrl"`
	Category string `yaml:"category"`
}

// GenAIConfig defines how to contact the Gemini API.
type GenAIConfig struct {
	Endpoint     string `yaml:"endpoint"`
	Model        string `yaml:"model"`
	APIKey       string `yaml:"apiKey"`
	SystemPrompt string `yaml:"systemPrompt"`
}

// RetryConfig bounds the summarization retry loop.
type RetryConfig struct {
	MaxAttempts    int `yaml:"maxAttempts"`
	BackoffSeconds int `yaml:"backoffSeconds"`
}

// Load reads YAML configuration (if present) and applies environment
// overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides(os.Environ())
	return cfg
}

func (c *Config) applyEnvOverrides(environ []string) {
	if v := os.Getenv(geminiAPIKeyEnv); v != "" {
		c.GenAI.APIKey = v
	}
	if v := os.Getenv(geminiModelEnv); v != "" {
		c.GenAI.Model = v
	}
	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv(gmailTokenEnv); v != "" {
		c.Gmail.AccessToken = v
	}
	if v := os.Getenv(imessageDBEnv); v != "" {
		c.IMessage.DBPath = v
	}
	if v := os.Getenv(outputDirEnv); v != "" {
		c.Output.Dir = v
	}

	// SLACK_TOKEN_<WORKSPACE>=token registers or overrides one workspace each.
	for _, entry := range environ {
		if !strings.HasPrefix(entry, slackTokenPrefix) {
			continue
		}
		key, value, ok := strings.Cut(entry, "=")
		if !ok || value == "" {
			continue
		}
		name := strings.TrimPrefix(key, slackTokenPrefix)
		if name == "" {
			continue
		}
		if c.Slack.Workspaces == nil {
			c.Slack.Workspaces = map[string]string{}
		}
		c.Slack.Workspaces[name] = value
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}
	if override.Output.Dir != "" {
		base.Output = override.Output
	}
	if override.Window.Hours > 0 {
		base.Window = override.Window
	}
	if len(override.Sources.Enabled) > 0 {
		base.Sources = override.Sources
	}
	if len(override.Slack.Workspaces) > 0 {
		base.Slack = override.Slack
	}
	if override.Telegram.BotToken != "" {
		base.Telegram.BotToken = override.Telegram.BotToken
	}
	if override.Telegram.ChatID != "" {
		base.Telegram.ChatID = override.Telegram.ChatID
	}
	if override.Gmail.AccessToken != "" {
		base.Gmail = override.Gmail
	}
	if override.IMessage.DBPath != "" {
		base.IMessage = override.IMessage
	}
	if override.Forum.URL != "" {
		base.Forum.URL = override.Forum.URL
	}
	if len(override.Forum.Keywords) > 0 {
		base.Forum.Keywords = override.Forum.Keywords
	}
	if len(override.Arxiv.Categories) > 0 {
		base.Arxiv = override.Arxiv
	}
	if override.Grants.FeedURL != "" {
		base.Grants = override.Grants
	}
	if override.Scoring.Floor > 0 {
		base.Scoring.Floor = override.Scoring.Floor
	}
	if override.Scoring.Ceiling > 0 {
		base.Scoring.Ceiling = override.Scoring.Ceiling
	}
	if len(override.Scoring.Rubric) > 0 {
		base.Scoring.Rubric = override.Scoring.Rubric
	}
	if override.Catalog.BaseURL != "" {
		base.Catalog.BaseURL = override.Catalog.BaseURL
	}
	if override.Catalog.Category != "" {
		base.Catalog.Category = override.Catalog.Category
	}
	if override.GenAI.Endpoint != "" {
		base.GenAI.Endpoint = override.GenAI.Endpoint
	}
	if override.GenAI.Model != "" {
		base.GenAI.Model = override.GenAI.Model
	}
	if override.GenAI.APIKey != "" {
		base.GenAI.APIKey = override.GenAI.APIKey
	}
	if override.GenAI.SystemPrompt != "" {
		base.GenAI.SystemPrompt = override.GenAI.SystemPrompt
	}
	if override.Retry.MaxAttempts > 0 {
		base.Retry.MaxAttempts = override.Retry.MaxAttempts
	}
	if override.Retry.BackoffSeconds > 0 {
		base.Retry.BackoffSeconds = override.Retry.BackoffSeconds
	}

	return base
}

func defaultConfig() Config {
	home, _ := os.UserHomeDir()

	return Config{
		Logging: LoggingConfig{Level: "info"},
		Output:  OutputConfig{Dir: filepath.Join(home, "gh")},
		Window:  WindowConfig{Hours: 24},
		Sources: SourcesConfig{
			Enabled: []string{"slack", "telegram", "gmail", "imessage", "forum", "arxiv", "grants"},
		},
		Telegram: TelegramConfig{},
		IMessage: IMessageConfig{
			DBPath: filepath.Join(home, "Library", "Messages", "chat.db"),
		},
		Forum: ForumConfig{
			URL:      "https://gov.vitadao.com/latest.json",
			Keywords: []string{"base", "airdrop", "ipt", "token", "whitelist", "presale", "aubrai", "bio"},
		},
		Arxiv: ArxivConfig{
			Categories: []CategoryConfig{
				{Name: "cond-mat.supr-con", URL: "https://export.arxiv.org/list/cond-mat.supr-con/recent"},
			},
		},
		Grants: GrantsConfig{
			FeedURL: "https://grants.gov/rss/GG_NewOppByCategory.xml",
		},
		Scoring: ScoringConfig{
			Floor:   10,
			Ceiling: 50,
			Rubric: []domain.RubricCriterion{
				{Name: "materials", Weight: 0.2},
				{Name: "structures", Weight: 0.3},
				{Name: "phenomena", Weight: 0.5},
			},
		},
		Catalog: CatalogConfig{
			BaseURL:  "https://api.coingecko.com/api/v3",
			Category: "governance",
		},
		GenAI: GenAIConfig{
			Endpoint:     "https://generativelanguage.googleapis.com/v1beta",
			Model:        "gemini-2.0-flash",
			APIKey:       "",
			SystemPrompt: defaultSystemPrompt,
		},
		Retry: RetryConfig{MaxAttempts: 3, BackoffSeconds: 40},
	}
}

const defaultSystemPrompt = `You are the user's Chief of Staff. Your goal is to apply the Eisenhower Matrix to a "fire hose" of raw message data (Slack, Telegram, Email) and filter out 90% of the noise.

**Input Data:**
The user will provide a JSON dump or text stream of messages from the last 24 hours.

**Your Processing Logic:**
1.  Scan every message.
2.  Discard anything that is:
    * Newsletters / Marketing / Spam.
    * Automated alerts (CI/CD, Jira) unless they indicate a critical failure.
    * "Thank you" / "Sounds good" / Low-signal social chatter.
3.  Group related messages (e.g., 5 Slack DMs from the same person about the same topic = 1 item).
4.  Categorize the remaining signal into the formats below.

**Output Format (Strict Markdown):**

# Urgent & Important (Do Now)
* **[Platform] Sender Name:** [One-sentence summary of the fire].
    * *Context:* [Brief detail if needed]
    * *Action:* [What needs to be done?]

# Not Urgent but Important (Schedule)
* **[Platform] Sender Name:** [Summary of proposal/document to review].
    * *Link:* [Insert Link if available]

# Urgent but Not Important (Delegate)
* **[Platform] Sender Name:** [Request for access/info that can be delegated].

# Clarifications (Optional)
* *List any ambiguous items where you cannot determine urgency without more info.*

**Tone:**
Direct, executive, and concise. No fluff. If the inbox is empty of urgent items, state "All clear."`
