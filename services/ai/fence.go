package aisvc

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/trezcool/njia/core"
)

var jsonFenceRegex = regexp.MustCompile("(?s)```json\\s*(.*?)```")

// ExtractFencedJSON pulls the payload out of the ```json code block embedded
// in a model's natural-language response. The envelope text itself is never
// parsed: no fence is core.ErrUpstreamFormat, a fenced payload that is not
// valid JSON is core.ErrUpstreamParse.
func ExtractFencedJSON(text string) (json.RawMessage, error) {
	match := jsonFenceRegex.FindStringSubmatch(text)
	if match == nil {
		return nil, core.ErrUpstreamFormat
	}
	payload := strings.TrimSpace(match[1])
	if !json.Valid([]byte(payload)) {
		return nil, core.ErrUpstreamParse
	}
	return json.RawMessage(payload), nil
}
