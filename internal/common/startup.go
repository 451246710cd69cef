package common

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/weaveworks/promrus"
)

const EnvPrefix = "FAIRSHARE"

// ConfigureLogging sets up logging until the configured level and format are known.
func ConfigureLogging() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetOutput(os.Stderr)
}

// BindCommandlineArguments makes the values of flags available through viper once they have been parsed.
func BindCommandlineArguments(flags *pflag.FlagSet) {
	err := viper.BindPFlags(flags)
	if err != nil {
		log.Error(err)
	}
}

// LoadConfig populates config from defaultPath/config.yaml, then each of the overrideConfigs in order, then
// environment variables prefixed with FAIRSHARE_. The default file may only be missing if overrides are given.
func LoadConfig(config interface{}, defaultPath string, overrideConfigs []string, opts ...viper.DecoderConfigOption) error {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(defaultPath)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || len(overrideConfigs) == 0 {
			return errors.Wrapf(err, "error reading base config from %s", defaultPath)
		}
		log.Infof("no base config found in %s", defaultPath)
	} else {
		log.Infof("read base config from %s", v.ConfigFileUsed())
	}

	for _, path := range overrideConfigs {
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return errors.Wrapf(err, "error reading config from %s", path)
		}
		log.Infof("merged config from %s", path)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if err := v.Unmarshal(config, opts...); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

// MetricsHandler returns a handler exposing the metrics of gatherer together with those of the default registry,
// which includes the log message counts recorded by the promrus hook added here.
func MetricsHandler(gatherer prometheus.Gatherer) http.Handler {
	hook, err := promrus.NewPrometheusHook()
	if err != nil {
		log.WithError(err).Warn("not counting log messages")
	} else {
		log.AddHook(hook)
	}
	return promhttp.HandlerFor(
		prometheus.Gatherers{prometheus.DefaultGatherer, gatherer},
		promhttp.HandlerOpts{},
	)
}

// NewHttpServer returns a server for handler listening on all interfaces on port.
func NewHttpServer(port uint16, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: handler,
	}
}
