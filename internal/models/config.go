package models

import (
	"fmt"
	"sort"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// PlatformRules is the marketing configuration active for one run. It never
// changes while a run is in progress.
type PlatformRules struct {
	EventName              string  `mapstructure:"event_name" json:"event_name"`
	FreeDelivery           bool    `mapstructure:"free_delivery" json:"free_delivery"`
	DeliveryCouponsEnabled bool    `mapstructure:"delivery_coupons_enabled" json:"delivery_coupons_enabled"`
	CouponThreshold        float64 `mapstructure:"coupon_threshold" json:"coupon_threshold"`
	CouponAmount           float64 `mapstructure:"coupon_amount" json:"coupon_amount"`
}

// MarketingStrategies are the named PlatformRules presets selectable with
// --strategy.
var MarketingStrategies = map[string]PlatformRules{
	"default": {
		EventName:       "日常购物",
		CouponThreshold: 999,
	},
	"aggressive": {
		EventName:       "瑞幸补贴：满15元减5元",
		CouponThreshold: 15,
		CouponAmount:    5,
	},
	"premium": {
		EventName:       "高端品牌周：精品咖啡优惠",
		CouponThreshold: 35,
		CouponAmount:    8,
	},
	"free_delivery": {
		EventName:              "外卖福利：免运费+阶梯红包（满10减3/满15减5/满30减10）",
		FreeDelivery:           true,
		DeliveryCouponsEnabled: true,
		CouponThreshold:        999,
	},
	"double_bonus": {
		EventName:       "双重优惠：免运费+满25减5",
		FreeDelivery:    true,
		CouponThreshold: 25,
		CouponAmount:    5,
	},
}

// StrategyRules resolves a preset by name.
func StrategyRules(name string) (PlatformRules, error) {
	rules, ok := MarketingStrategies[name]
	if !ok {
		names := make([]string, 0, len(MarketingStrategies))
		for n := range MarketingStrategies {
			names = append(names, n)
		}
		sort.Strings(names)
		return PlatformRules{}, fmt.Errorf("unknown marketing strategy %q, choose one of %v", name, names)
	}
	return rules, nil
}

// SimulationModes maps the --mode flag to a sample size.
var SimulationModes = map[string]int{
	"test":      5,
	"demo":      20,
	"half":      50,
	"full":      100,
	"benchmark": 200,
	"mass":      1000,
}

// ShopSetup is one map overlay entry: a brand placed at a location with its
// current queue.
type ShopSetup struct {
	ID           string `mapstructure:"id" json:"id"`
	BrandID      string `mapstructure:"brand" json:"brand"`
	X            int    `mapstructure:"x" json:"x"`
	Y            int    `mapstructure:"y" json:"y"`
	CurrentQueue int    `mapstructure:"current_queue" json:"current_queue"`
	Description  string `mapstructure:"description" json:"description"`
}

// DefaultMapOverlay is the built-in Huashida business-district map: the
// campus gate sits at (1000, 1000) and coordinates are metres.
var DefaultMapOverlay = []ShopSetup{
	{ID: "Shop_1", BrandID: "Luckin", X: 1000, Y: 1050, CurrentQueue: 15, Description: "校门口瑞幸 - 人气旺、排队久"},
	{ID: "Shop_2", BrandID: "Nowwa", X: 1000, Y: 1200, CurrentQueue: 3, Description: "枣阳路挪瓦 - 周边社区、外卖主力"},
	{ID: "Shop_3", BrandID: "Manner", X: 1000, Y: 1800, CurrentQueue: 8, Description: "环球港 Manner - 精品小店、自带杯文化"},
	{ID: "Shop_4", BrandID: "MStand", X: 1050, Y: 1850, CurrentQueue: 5, Description: "环球港 M Stand - 高颜值打卡店"},
	{ID: "Shop_5", BrandID: "Starbucks", X: 900, Y: 1600, CurrentQueue: 10, Description: "环球港星巴克 - 全球连锁品牌"},
	{ID: "Shop_6", BrandID: "Seesaw", X: 1100, Y: 1700, CurrentQueue: 4, Description: "创意体验 Seesaw - 精品咖啡馆"},
	{ID: "Shop_7", BrandID: "Tims", X: 950, Y: 1500, CurrentQueue: 3, Description: "Tims 天好咖啡 - 咖啡+暖食便捷餐饮"},
	{ID: "Shop_8", BrandID: "Arabica", X: 1150, Y: 1600, CurrentQueue: 2, Description: "%ARABICA - 高端精品咖啡馆"},
	{ID: "Shop_9", BrandID: "Yongbo", X: 900, Y: 1700, CurrentQueue: 4, Description: "永璞咖啡 - 新锐创意品牌"},
	{ID: "Shop_10", BrandID: "PiYe", X: 1200, Y: 1500, CurrentQueue: 5, Description: "皮爷咖啡 - 社交打卡新宠"},
	{ID: "Shop_11", BrandID: "BluebottleC", X: 1000, Y: 1400, CurrentQueue: 3, Description: "蓝瓶咖啡 - 国际精品咖啡连锁"},
	{ID: "Shop_12", BrandID: "Luckin", X: 980, Y: 1120, CurrentQueue: 12, Description: "瑞幸咖啡 - 二店（教学楼侧门）"},
	{ID: "Shop_13", BrandID: "Nowwa", X: 1030, Y: 1300, CurrentQueue: 2, Description: "Nowwa 挪瓦 - 二店（社区外卖点）"},
	{ID: "Shop_14", BrandID: "Manner", X: 1020, Y: 1750, CurrentQueue: 6, Description: "Manner - 二店（商场内店）"},
	{ID: "Shop_15", BrandID: "Starbucks", X: 880, Y: 1550, CurrentQueue: 9, Description: "星巴克 - 二店（北广场）"},
	{ID: "Shop_16", BrandID: "Tims", X: 960, Y: 1450, CurrentQueue: 4, Description: "Tims 天好咖啡 - 二店（写字楼入口）"},
}

type OracleConfig struct {
	APIKey       string `mapstructure:"api_key"`
	BaseURL      string `mapstructure:"base_url"`
	Model        string `mapstructure:"model"`
	TimeoutSecs  int    `mapstructure:"timeout_seconds"`
	MaxPerMinute int    `mapstructure:"max_per_minute"`
	Mock         bool   `mapstructure:"mock"`
}

type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// Config collects everything a run needs. Global defaults live here and are
// passed into the simulator at construction, never read as ambient state.
type Config struct {
	Seed       int64  `mapstructure:"seed"`
	Mode       string `mapstructure:"mode"`
	SampleSize int    `mapstructure:"sample_size"` // overrides the mode's size when > 0
	Strategy   string `mapstructure:"strategy"`
	Workers    int    `mapstructure:"workers"`
	PacingMs   int    `mapstructure:"pacing_ms"` // delay between oracle admissions

	PopulationFile   string `mapstructure:"population_file"`
	BrandLibraryFile string `mapstructure:"brand_library_file"`

	// Customer locations are drawn uniformly from this square.
	MapMin int `mapstructure:"map_min"`
	MapMax int `mapstructure:"map_max"`

	MapOverlay []ShopSetup `mapstructure:"map_overlay"`

	OutputFile   string `mapstructure:"output_file"`
	OutputFolder string `mapstructure:"output_folder"`
	OutputFormat string `mapstructure:"output_format"` // csv, json, parquet, console

	KafkaEnabled     bool   `mapstructure:"kafka_enabled"`
	KafkaBrokerList  string `mapstructure:"kafka_broker_list"`
	KafkaTopic       string `mapstructure:"kafka_topic"`
	SessionTimeoutMs int    `mapstructure:"session_timeout_ms"`

	CloudStorage bool   `mapstructure:"cloud_storage"`
	CloudBucket  string `mapstructure:"cloud_bucket"`
	AWSRegion    string `mapstructure:"aws_region"`

	Oracle   OracleConfig   `mapstructure:"oracle"`
	Database DatabaseConfig `mapstructure:"database"`
}

// SampleCount resolves the effective sample size from the explicit override
// or the named mode.
func (cfg *Config) SampleCount() (int, error) {
	if cfg.SampleSize > 0 {
		return cfg.SampleSize, nil
	}
	size, ok := SimulationModes[cfg.Mode]
	if !ok {
		names := make([]string, 0, len(SimulationModes))
		for n := range SimulationModes {
			names = append(names, n)
		}
		sort.Strings(names)
		return 0, fmt.Errorf("unknown simulation mode %q, choose one of %v", cfg.Mode, names)
	}
	return size, nil
}

// LoadConfig initialises and reads the configuration using Viper.
func LoadConfig(cfgFile string) (*Config, error) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath("examples")
		viper.SetConfigName("config")
		viper.SetConfigType("json")
	}

	viper.AutomaticEnv()
	viper.BindEnv("oracle.api_key", "DEEPSEEK_API_KEY")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// config file is optional; flags and defaults cover every field
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	decoderConfigOption := viper.DecoderConfigOption(func(dc *mapstructure.DecoderConfig) {
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			dc.DecodeHook,
			mapstructure.StringToSliceHookFunc(","),
		)
	})
	if err := viper.Unmarshal(&config, decoderConfigOption); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}

	if len(config.MapOverlay) == 0 {
		config.MapOverlay = DefaultMapOverlay
	}
	return &config, nil
}

func setDefaults() {
	viper.SetDefault("seed", 42)
	viper.SetDefault("mode", "test")
	viper.SetDefault("strategy", "default")
	viper.SetDefault("workers", 1)
	viper.SetDefault("pacing_ms", 500)
	viper.SetDefault("map_min", 500)
	viper.SetDefault("map_max", 1500)
	viper.SetDefault("population_file", "data/shanghai_population.csv")
	viper.SetDefault("brand_library_file", "data/coffee_brands_library.json")
	viper.SetDefault("output_folder", "data/output")
	viper.SetDefault("output_format", "csv")
	viper.SetDefault("kafka_topic", "decision_events")
	viper.SetDefault("oracle.base_url", "https://api.deepseek.com")
	viper.SetDefault("oracle.model", "deepseek-chat")
	viper.SetDefault("oracle.timeout_seconds", 30)
	viper.SetDefault("oracle.max_per_minute", 60)
}
