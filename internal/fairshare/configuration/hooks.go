package configuration

import (
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// CustomHooks replaces viper's default decode hook. Durations are still decoded from strings.
var CustomHooks = []viper.DecoderConfigOption{
	viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		MembersDecodeHook(),
	)),
}

// MembersDecodeHook allows group members to be given as a single space-separated string.
func MembersDecodeHook() mapstructure.DecodeHookFuncType {
	return func(
		f reflect.Type,
		t reflect.Type,
		data interface{},
	) (interface{}, error) {
		if f.Kind() != reflect.String || t != reflect.TypeOf(Members{}) {
			return data, nil
		}
		return Members(strings.Fields(data.(string))), nil
	}
}
