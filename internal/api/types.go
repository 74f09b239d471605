package api

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// RoundsResponse is the rounds feed document.
type RoundsResponse struct {
	Rounds []APIRound `json:"rounds"`
}

// APIRound represents one round as published in the feed.
type APIRound struct {
	DrawNumber       FlexString `json:"drawNumber"`
	DrawDate         FlexString `json:"drawDate"`
	DrawDateFull     FlexString `json:"drawDateFull"`
	DrawName         FlexString `json:"drawName"`
	DrawSize         FlexString `json:"drawSize"`
	DrawCRS          FlexString `json:"drawCRS"`
	DrawText2        FlexString `json:"drawText2"`
	DrawDateTime     FlexString `json:"drawDateTime"`
	DrawCutOff       FlexString `json:"drawCutOff"`
	DrawDistribution FlexString `json:"drawDistributionAsOn"`

	// Pool distribution by CRS range
	DD1  FlexString `json:"dd1"`
	DD2  FlexString `json:"dd2"`
	DD3  FlexString `json:"dd3"`
	DD4  FlexString `json:"dd4"`
	DD5  FlexString `json:"dd5"`
	DD6  FlexString `json:"dd6"`
	DD7  FlexString `json:"dd7"`
	DD8  FlexString `json:"dd8"`
	DD9  FlexString `json:"dd9"`
	DD10 FlexString `json:"dd10"`
	DD11 FlexString `json:"dd11"`
	DD12 FlexString `json:"dd12"`
	DD13 FlexString `json:"dd13"`
	DD14 FlexString `json:"dd14"`
	DD15 FlexString `json:"dd15"`
	DD16 FlexString `json:"dd16"`
	DD17 FlexString `json:"dd17"`
	DD18 FlexString `json:"dd18"`
}

// FlexString decodes a JSON string, number or null into a string.
// The feed is not consistent about quoting numbers.
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}

	if data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = FlexString(str)
		return nil
	}

	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("flex string: unsupported value %s", data)
	}
	*s = FlexString(num.String())
	return nil
}

func (s FlexString) String() string {
	return string(s)
}
