package models

// InputKind identifies a ScoringInputs variant
type InputKind string

const (
	InputClassic InputKind = "classic"
	InputCIA     InputKind = "cia"
	InputDREAD   InputKind = "dread"
	InputOWASP   InputKind = "owasp"
	InputCVSS    InputKind = "cvss"
)

// ScoringInputs is the methodology-specific input set applied to a risk.
// Implementations: ClassicInputs, CIAInputs, DreadFactors, OwaspFactors, CvssFactors.
type ScoringInputs interface {
	Kind() InputKind
	scoringInputs()
}

// ClassicInputs rates impact directly. Used by methods without a factor set.
type ClassicInputs struct {
	Likelihood int `json:"likelihood" validate:"required,min=1,max=5"`
	Impact     int `json:"impact" validate:"required,min=1,max=5"`
}

// CIAInputs rates the confidentiality, integrity and availability triad.
type CIAInputs struct {
	Likelihood      int `json:"likelihood" validate:"required,min=1,max=5"`
	Confidentiality int `json:"confidentiality" validate:"required,min=1,max=5"`
	Integrity       int `json:"integrity" validate:"required,min=1,max=5"`
	Availability    int `json:"availability" validate:"required,min=1,max=5"`
}

// DreadFactors is the DREAD factor set
type DreadFactors struct {
	Damage          int `json:"damage" validate:"required,min=1,max=5"`
	Reproducibility int `json:"reproducibility" validate:"required,min=1,max=5"`
	Exploitability  int `json:"exploitability" validate:"required,min=1,max=5"`
	AffectedUsers   int `json:"affected_users" validate:"required,min=1,max=5"`
	Discoverability int `json:"discoverability" validate:"required,min=1,max=5"`
}

// OwaspFactors is the OWASP risk rating factor set
type OwaspFactors struct {
	SkillLevel          int `json:"skill_level" validate:"required,min=1,max=5"`
	Motive              int `json:"motive" validate:"required,min=1,max=5"`
	Opportunity         int `json:"opportunity" validate:"required,min=1,max=5"`
	Size                int `json:"size" validate:"required,min=1,max=5"`
	EaseOfDiscovery     int `json:"ease_of_discovery" validate:"required,min=1,max=5"`
	EaseOfExploit       int `json:"ease_of_exploit" validate:"required,min=1,max=5"`
	Awareness           int `json:"awareness" validate:"required,min=1,max=5"`
	IntrusionDetection  int `json:"intrusion_detection" validate:"required,min=1,max=5"`
	LossConfidentiality int `json:"loss_confidentiality" validate:"required,min=1,max=5"`
	LossIntegrity       int `json:"loss_integrity" validate:"required,min=1,max=5"`
	LossAvailability    int `json:"loss_availability" validate:"required,min=1,max=5"`
	LossAccountability  int `json:"loss_accountability" validate:"required,min=1,max=5"`
	FinancialDamage     int `json:"financial_damage" validate:"required,min=1,max=5"`
	ReputationDamage    int `json:"reputation_damage" validate:"required,min=1,max=5"`
	NonCompliance       int `json:"non_compliance" validate:"required,min=1,max=5"`
	PrivacyViolation    int `json:"privacy_violation" validate:"required,min=1,max=5"`
}

// CvssFactors is the CVSS-style factor set. RemediationLevel is recorded but not aggregated.
type CvssFactors struct {
	AttackVector               int `json:"attack_vector" validate:"required,min=1,max=5"`
	AttackComplexity           int `json:"attack_complexity" validate:"required,min=1,max=5"`
	Authentication             int `json:"authentication" validate:"required,min=1,max=5"`
	ConfidentialityImpact      int `json:"confidentiality_impact" validate:"required,min=1,max=5"`
	IntegrityImpact            int `json:"integrity_impact" validate:"required,min=1,max=5"`
	AvailabilityImpact         int `json:"availability_impact" validate:"required,min=1,max=5"`
	Exploitability             int `json:"exploitability" validate:"required,min=1,max=5"`
	RemediationLevel           int `json:"remediation_level" validate:"required,min=1,max=5"`
	ReportConfidence           int `json:"report_confidence" validate:"required,min=1,max=5"`
	CollateralDamagePotential  int `json:"collateral_damage_potential" validate:"required,min=1,max=5"`
	TargetDistribution         int `json:"target_distribution" validate:"required,min=1,max=5"`
	ConfidentialityRequirement int `json:"confidentiality_requirement" validate:"required,min=1,max=5"`
	IntegrityRequirement       int `json:"integrity_requirement" validate:"required,min=1,max=5"`
	AvailabilityRequirement    int `json:"availability_requirement" validate:"required,min=1,max=5"`
}

func (ClassicInputs) Kind() InputKind { return InputClassic }
func (CIAInputs) Kind() InputKind     { return InputCIA }
func (DreadFactors) Kind() InputKind  { return InputDREAD }
func (OwaspFactors) Kind() InputKind  { return InputOWASP }
func (CvssFactors) Kind() InputKind   { return InputCVSS }

func (ClassicInputs) scoringInputs() {}
func (CIAInputs) scoringInputs()     {}
func (DreadFactors) scoringInputs()  {}
func (OwaspFactors) scoringInputs()  {}
func (CvssFactors) scoringInputs()   {}
