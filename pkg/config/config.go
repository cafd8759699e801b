package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	Knowledge KnowledgeConfig `mapstructure:"knowledge"`
	Leads     LeadsConfig     `mapstructure:"leads"`
	Analyzer  AnalyzerConfig  `mapstructure:"analyzer"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type OpenAIConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	ChatModel   string  `mapstructure:"chat_model"`
	VisionModel string  `mapstructure:"vision_model"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
}

type KnowledgeConfig struct {
	Path string `mapstructure:"path"`
}

type LeadsConfig struct {
	File        string `mapstructure:"file"`
	UseInMemory bool   `mapstructure:"use_in_memory"`
}

type AnalyzerConfig struct {
	YTDLPPath       string        `mapstructure:"ytdlp_path"`
	FFmpegPath      string        `mapstructure:"ffmpeg_path"`
	FFprobePath     string        `mapstructure:"ffprobe_path"`
	MaxFileSize     string        `mapstructure:"max_file_size"`
	MaxDuration     int           `mapstructure:"max_duration"`
	MaxHeight       int           `mapstructure:"max_height"`
	DownloadTimeout time.Duration `mapstructure:"download_timeout"`
	SubtitleTimeout time.Duration `mapstructure:"subtitle_timeout"`
	FrameTimeout    time.Duration `mapstructure:"frame_timeout"`
	FrameCount      int           `mapstructure:"frame_count"`
	FrameWidth      int           `mapstructure:"frame_width"`
	TranscriptMax   int           `mapstructure:"transcript_max"`
	DefaultSeconds  int           `mapstructure:"default_seconds"`
}

func LoadConfig(path string) (*Config, error) {
	// Best-effort .env load so local runs can keep secrets out of the shell
	_ = godotenv.Load()

	v := viper.New()

	// Set default values
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("openai.chat_model", "gpt-4o-mini")
	v.SetDefault("openai.vision_model", "gpt-4o")
	v.SetDefault("openai.max_tokens", 1024)
	v.SetDefault("openai.temperature", 0.7)
	v.SetDefault("knowledge.path", "knowledge.md")
	v.SetDefault("leads.file", "leads.tsv")
	v.SetDefault("leads.use_in_memory", false)
	v.SetDefault("analyzer.ytdlp_path", "yt-dlp")
	v.SetDefault("analyzer.ffmpeg_path", "ffmpeg")
	v.SetDefault("analyzer.ffprobe_path", "ffprobe")
	v.SetDefault("analyzer.max_file_size", "150m")
	v.SetDefault("analyzer.max_duration", 1200)
	v.SetDefault("analyzer.max_height", 480)
	v.SetDefault("analyzer.download_timeout", 120*time.Second)
	v.SetDefault("analyzer.subtitle_timeout", 30*time.Second)
	v.SetDefault("analyzer.frame_timeout", 15*time.Second)
	v.SetDefault("analyzer.frame_count", 8)
	v.SetDefault("analyzer.frame_width", 640)
	v.SetDefault("analyzer.transcript_max", 3000)
	v.SetDefault("analyzer.default_seconds", 60)

	// Enable environment variable support
	v.AutomaticEnv()

	// The config file is optional: pure-env deployments are fine
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(path); statErr == nil {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Environment overrides
	if apiKey := v.GetString("OPENAI_API_KEY"); apiKey != "" {
		config.OpenAI.APIKey = apiKey
	}
	if port := v.GetInt("SERVER_PORT"); port != 0 {
		config.Server.Port = port
	}
	if kb := v.GetString("KNOWLEDGE_PATH"); kb != "" {
		config.Knowledge.Path = kb
	}
	if leads := v.GetString("LEADS_FILE"); leads != "" {
		config.Leads.File = leads
	}

	if config.OpenAI.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required (set OPENAI_API_KEY or openai.api_key)")
	}

	return &config, nil
}
