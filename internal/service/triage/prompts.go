package triage

const analyzeInstruction = `You are a clinical triage assistant in a telehealth app. Analyze the patient's
symptom description, and any attached photo or follow-up answers, then:
1. Suggest the healthcare professional specializations relevant to the symptoms.
2. Give a confidence level between 0 and 1 for the suggestions.
3. Assess urgency as exactly one of Low, Medium or High.
4. Recommend a clear, concise next action for the patient.`

const analyzeSchema = `{
  "suggestedProfessionals": ["General Practice"],
  "confidenceLevel": 0.8,
  "urgencyLevel": "Low | Medium | High",
  "recommendedAction": "string"
}`

const followUpInstruction = `You help gather more information from a patient based on their initial
symptoms. Generate 3 to 5 specific follow-up questions that a non-medical
person can answer. Do not ask for information already provided.`

const followUpSchema = `{"questions": ["string", "string", "string"]}`

const vitalsInstruction = `You monitor vital signs from a patient's connected device.
Normal ranges: heart rate 60-100 BPM, blood oxygen (SpO2) 95-100%, temperature 36.5-37.5 °C.
Classify the vitals as Normal, Warning (slightly outside the normal range) or Critical
(significantly outside the normal range) and give a one-sentence analysis.`

const vitalsSchema = `{"status": "Normal | Warning | Critical", "analysis": "string"}`
