package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"chatbot_platform/internal/entities"
)

var errTokenShape = errors.New("tokens must be a list of {platform_id, platform_name, token} or a {platform_name: token} object")

// decodeTokens reads agent credentials in either accepted shape:
//
//	[{"platform_id": 1, "platform_name": "telegram", "token": "T"}]
//	{"telegram": "T"}
//
// A missing or null value decodes to nil.
func decodeTokens(raw json.RawMessage) ([]entities.PlatformToken, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	switch raw[0] {
	case '[':
		var list []entities.PlatformToken
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("%w: %v", errTokenShape, err)
		}
		return list, nil
	case '{':
		var byName map[string]string
		if err := json.Unmarshal(raw, &byName); err != nil {
			return nil, fmt.Errorf("%w: %v", errTokenShape, err)
		}
		names := make([]string, 0, len(byName))
		for name := range byName {
			names = append(names, name)
		}
		sort.Strings(names)

		list := make([]entities.PlatformToken, 0, len(byName))
		for _, name := range names {
			list = append(list, entities.PlatformToken{PlatformName: name, Token: byName[name]})
		}
		return list, nil
	default:
		return nil, errTokenShape
	}
}
