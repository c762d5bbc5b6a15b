package config

import "github.com/spf13/viper"

var (
	KeyGPXFile        = "gpx.file"
	KeyServeAddress   = "serve.address"
	KeyRoutingURL     = "routing.url"
	KeyThumbDirectory = "thumbs.directory"
	KeyListLocale     = "list.locale"
)

func HasGPXFile() bool {
	return viper.IsSet(KeyGPXFile) && viper.GetString(KeyGPXFile) != ""
}

func GPXFile() string {
	return viper.GetString(KeyGPXFile)
}

func ServeAddress() string {
	if viper.IsSet(KeyServeAddress) {
		return viper.GetString(KeyServeAddress)
	}
	return "localhost:8791"
}

func RoutingURL() string {
	if viper.IsSet(KeyRoutingURL) {
		return viper.GetString(KeyRoutingURL)
	}
	return "https://router.project-osrm.org"
}

func ThumbDirectory() string {
	return viper.GetString(KeyThumbDirectory)
}

func ListLocale() string {
	if viper.IsSet(KeyListLocale) {
		return viper.GetString(KeyListLocale)
	}
	return "en_US"
}
