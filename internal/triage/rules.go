package triage

// defaultRules is the built-in clinical rule set. Order matters: the first
// matching rule decides the category, so higher-acuity classes come first.
func defaultRules() ruleset {
	return ruleset{
		redFlags: []phraseRule{
			// Cardiac
			{"crushing chest pain", "Cardiac"},
			{"chest pain", "Cardiac"},
			{"heart attack", "Cardiac"},
			{"elephant on my chest", "Cardiac"},
			{"elephant on chest", "Cardiac"},
			{"pain down my arm", "Cardiac"},
			// Respiratory distress
			{"can't breathe", "Respiratory"},
			{"not breathing", "Respiratory"},
			{"struggling to breathe", "Respiratory"},
			{"difficulty breathing", "Respiratory"},
			{"gasping", "Respiratory"},
			{"turning blue", "Respiratory"},
			// Stroke signs / neuro
			{"drooping face", "Neurological"},
			{"face is drooping", "Neurological"},
			{"slurred speech", "Neurological"},
			{"stroke", "Neurological"},
			{"seizure", "Neurological"},
			{"unconscious", "Neurological"},
			{"passed out", "Neurological"},
			{"collapsed", "Neurological"},
			// Severe trauma / bleeding
			{"severe bleeding", "Trauma"},
			{"bleeding heavily", "Trauma"},
			{"won't stop bleeding", "Trauma"},
			{"coughing blood", "Trauma"},
			{"coughing up blood", "Trauma"},
			{"vomiting blood", "Trauma"},
			{"stabbed", "Trauma"},
			{"gunshot", "Trauma"},
		},
		moderate: []phraseRule{
			{"high fever", "Infection"},
			{"fever", "Infection"},
			{"vomiting", "Infection"},
			{"vomit", "Infection"},
			{"diarrhoea", "Infection"},
			{"diarrhea", "Infection"},
			{"infection", "Infection"},
			{"persistent cough", "Respiratory"},
			{"wheezing", "Respiratory"},
			{"shortness of breath", "Respiratory"},
			{"dizzy", "General Medicine"},
			{"dizziness", "General Medicine"},
			{"dehydrated", "General Medicine"},
			{"fainting", "General Medicine"},
			{"broken", "Trauma"},
			{"fracture", "Trauma"},
			{"sprained", "Trauma"},
			{"deep cut", "Trauma"},
			{"burn", "Trauma"},
			{"abdominal pain", "Digestive"},
			{"stomach pain", "Digestive"},
			{"rash", "Dermatology"},
		},
		minor: []string{
			"headache", "cough", "cold", "flu", "runny nose", "sore throat",
			"blocked nose", "earache", "tired", "fatigue", "sore", "ache",
			"itchy", "check up", "checkup", "repeat prescription", "pain",
			"cramps", "heartburn", "constipated", "nausea",
		},
		severity: []string{
			"severe", "unbearable", "excruciating", "worst", "agony",
			"very bad", "terrible", "intense", "sharp",
		},
		mild: []string{
			"mild", "slight", "slightly", "a little", "a bit", "small", "minor",
		},
		duration: []string{
			"since", "for a", "for two", "for three", "days", "weeks", "hours",
			"this morning", "yesterday", "last night", "all day", "started",
		},
	}
}
