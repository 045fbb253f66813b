package alert

import (
	"encoding/json"

	sharederrors "github.com/abodks10-ai/Pred-Guard/internal/shared/errors"
)

// Details is the typed payload attached to an alert. Each alert type carries
// exactly one payload shape; the serialized form is tagged with a kind so it
// can be decoded without runtime shape guessing.
type Details interface {
	Kind() string
}

type DowntimeDetails struct {
	HTTPStatus       int `json:"http_status"`
	ConsecutiveFails int `json:"consecutive_fails"`
}

func (DowntimeDetails) Kind() string { return "downtime" }

type VulnerabilityDetails struct {
	VulnerabilityType string `json:"vulnerability_type"`
	Location          string `json:"location"`
	Recommendation    string `json:"recommendation"`
}

func (VulnerabilityDetails) Kind() string { return "vulnerability" }

type SSLIssueDetails struct {
	Expiry   string `json:"expiry,omitempty"`
	DaysLeft int    `json:"days_left,omitempty"`
	Problem  string `json:"problem"`
}

func (SSLIssueDetails) Kind() string { return "ssl_issue" }

type MaliciousLinkDetails struct {
	LinkURL    string `json:"link_url"`
	FoundIn    string `json:"found_in"`
	LinkType   string `json:"link_type"`
	ThreatType string `json:"threat_type"`
}

func (MaliciousLinkDetails) Kind() string { return "malicious_link" }

type BehaviorAnomalyDetails struct {
	FingerprintType string  `json:"fingerprint_type"`
	DeviationScore  float64 `json:"deviation_score"`
	Threshold       float64 `json:"threshold"`
}

func (BehaviorAnomalyDetails) Kind() string { return "behavior_anomaly" }

type AttackPredictionDetails struct {
	PredictedAttackType string `json:"predicted_attack_type"`
	Probability         int    `json:"probability"`
	Timeframe           string `json:"timeframe"`
	Reasoning           string `json:"reasoning,omitempty"`
}

func (AttackPredictionDetails) Kind() string { return "attack_prediction" }

type PhishingDetails struct {
	CloneURL        string `json:"clone_url"`
	SimilarityScore int    `json:"similarity_score"`
	CloneType       string `json:"clone_type"`
}

func (PhishingDetails) Kind() string { return "phishing" }

type ContentChangeDetails struct {
	PreviousHash string `json:"previous_hash"`
	CurrentHash  string `json:"current_hash"`
	SizeDelta    int    `json:"size_delta"`
}

func (ContentChangeDetails) Kind() string { return "content_change" }

type PerformanceDetails struct {
	ResponseTimeMs int `json:"response_time_ms"`
	ThresholdMs    int `json:"threshold_ms"`
}

func (PerformanceDetails) Kind() string { return "performance" }

type IntrusionDetails struct {
	PatternHash string   `json:"pattern_hash"`
	Techniques  []string `json:"techniques,omitempty"`
	SourceIP    string   `json:"source_ip,omitempty"`
}

func (IntrusionDetails) Kind() string { return "intrusion_attempt" }

// DefenseFailureDetails is the payload of the `other`-typed alert raised when
// an automatic defense action fails to execute.
type DefenseFailureDetails struct {
	ActionID   int64  `json:"action_id"`
	ActionType string `json:"action_type"`
	Reason     string `json:"reason"`
}

func (DefenseFailureDetails) Kind() string { return "defense_failure" }

type envelope struct {
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// EncodeDetails serializes a details payload with its kind tag. A nil details
// value encodes to the empty string.
func EncodeDetails(d Details) (string, error) {
	if d == nil {
		return "", nil
	}
	payload, err := json.Marshal(d)
	if err != nil {
		return "", sharederrors.ErrSerializationFailed
	}
	raw, err := json.Marshal(envelope{Kind: d.Kind(), Payload: payload})
	if err != nil {
		return "", sharederrors.ErrSerializationFailed
	}
	return string(raw), nil
}

// DecodeDetails parses a serialized payload back into its typed shape.
func DecodeDetails(raw string) (Details, error) {
	if raw == "" {
		return nil, nil
	}
	var env envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return nil, sharederrors.ErrDeserializationFailed
	}
	var d Details
	switch env.Kind {
	case "downtime":
		d = &DowntimeDetails{}
	case "vulnerability":
		d = &VulnerabilityDetails{}
	case "ssl_issue":
		d = &SSLIssueDetails{}
	case "malicious_link":
		d = &MaliciousLinkDetails{}
	case "behavior_anomaly":
		d = &BehaviorAnomalyDetails{}
	case "attack_prediction":
		d = &AttackPredictionDetails{}
	case "phishing":
		d = &PhishingDetails{}
	case "content_change":
		d = &ContentChangeDetails{}
	case "performance":
		d = &PerformanceDetails{}
	case "intrusion_attempt":
		d = &IntrusionDetails{}
	case "defense_failure":
		d = &DefenseFailureDetails{}
	default:
		return nil, sharederrors.ErrUnknownDetailsKind
	}
	if len(env.Payload) > 0 {
		if err := json.Unmarshal(env.Payload, d); err != nil {
			return nil, sharederrors.ErrDeserializationFailed
		}
	}
	return d, nil
}
