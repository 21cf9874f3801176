package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// PlanSpec describes one subscription tier in the catalog file.
type PlanSpec struct {
	Name                 string  `mapstructure:"name"`
	TrialPeriodDays      int     `mapstructure:"trial_period_days"`
	MaxOrganizations     int     `mapstructure:"max_organizations"`
	MaxSubUsers          int     `mapstructure:"max_sub_users"`
	MaxReportsDownload   int     `mapstructure:"max_reports_download"`
	MaxReportViewsPerDay int     `mapstructure:"max_report_views_per_day"`
	MaxProducts          int     `mapstructure:"max_products"`
	MaxBillsCreation     int     `mapstructure:"max_bills_creation"`
	MaxOrdersPerMonth    int     `mapstructure:"max_orders_per_month"`
	MaxBarcodeScans      int     `mapstructure:"max_barcode_scans"`
	MaxAPICalls          int     `mapstructure:"max_api_calls"`
	Price                float64 `mapstructure:"price"`
	BillingCycle         string  `mapstructure:"billing_cycle"`
}

// PlanCatalog is the set of plans seeded at boot.
type PlanCatalog struct {
	Plans []PlanSpec `mapstructure:"plans"`
}

func DefaultPlanCatalog() PlanCatalog {
	return PlanCatalog{
		Plans: []PlanSpec{
			{
				Name:                 "Free",
				MaxOrganizations:     1,
				MaxSubUsers:          1,
				MaxReportsDownload:   10,
				MaxReportViewsPerDay: 2,
				MaxProducts:          20,
				MaxBillsCreation:     20,
				MaxOrdersPerMonth:    10,
				MaxBarcodeScans:      30,
				MaxAPICalls:          200,
				BillingCycle:         "Monthly",
			},
			{
				Name:                 "Basic",
				TrialPeriodDays:      14,
				MaxOrganizations:     3,
				MaxSubUsers:          5,
				MaxReportsDownload:   50,
				MaxReportViewsPerDay: 20,
				MaxProducts:          500,
				MaxBillsCreation:     500,
				MaxOrdersPerMonth:    200,
				MaxBarcodeScans:      1000,
				MaxAPICalls:          10000,
				Price:                499,
				BillingCycle:         "Monthly",
			},
			{
				Name:                 "Premium",
				TrialPeriodDays:      14,
				MaxOrganizations:     10,
				MaxSubUsers:          25,
				MaxReportsDownload:   500,
				MaxReportViewsPerDay: 200,
				MaxProducts:          10000,
				MaxBillsCreation:     10000,
				MaxOrdersPerMonth:    5000,
				MaxBarcodeScans:      50000,
				MaxAPICalls:          200000,
				Price:                1499,
				BillingCycle:         "Monthly",
			},
		},
	}
}

// PlanCatalogHolder serves the current catalog and hot-reloads it when the
// backing file changes.
type PlanCatalogHolder struct {
	current atomic.Value // holds PlanCatalog
}

func NewPlanCatalogHolder() (*PlanCatalogHolder, error) {
	v := viper.New()

	v.SetConfigName("plans")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/shopstack/config")
	v.AddConfigPath("/etc/shopstack")
	v.AddConfigPath(".")

	v.SetEnvPrefix("SHOPSTACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	holder := &PlanCatalogHolder{}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		holder.current.Store(DefaultPlanCatalog())
		return holder, nil
	}

	catalog, err := decodeCatalog(v)
	if err != nil {
		return nil, err
	}
	holder.current.Store(catalog)

	v.OnConfigChange(func(_ fsnotify.Event) {
		reloaded, err := decodeCatalog(v)
		if err != nil {
			log.Printf("plans config reload failed: %v", err)
			return
		}
		holder.current.Store(reloaded)
	})
	v.WatchConfig()

	return holder, nil
}

func (h *PlanCatalogHolder) Current() PlanCatalog {
	if value, ok := h.current.Load().(PlanCatalog); ok {
		return value
	}
	return DefaultPlanCatalog()
}

func decodeCatalog(v *viper.Viper) (PlanCatalog, error) {
	var catalog PlanCatalog
	if err := v.Unmarshal(&catalog); err != nil {
		return PlanCatalog{}, err
	}
	if len(catalog.Plans) == 0 {
		return DefaultPlanCatalog(), nil
	}
	return catalog, nil
}
