package medical

const diagnosisInstruction = `You assist a healthcare professional during a consultation. From the
patient's symptom summary and the professional's notes, produce a diagnosis
summary, a list of potential conditions, and recommended next steps such as
tests, lifestyle changes or referrals. The professional makes the final call.`

const diagnosisSchema = `{
  "diagnosisSummary": "string",
  "potentialConditions": ["string"],
  "recommendedNextSteps": "string"
}`

const prescriptionInstruction = `You assist a healthcare professional in drafting a prescription. Use the
final diagnosis, the symptom summary and the consultation notes. For each
medication give name, dosage, frequency and the reason it is prescribed.
Add any general notes for the patient and a confidence level between 0 and 1.
The professional reviews and edits the draft before it is issued.`

const prescriptionSchema = `{
  "medications": [{"name": "string", "dosage": "string", "frequency": "string", "reason": "string"}],
  "notes": "string",
  "confidenceLevel": 0.8
}`
