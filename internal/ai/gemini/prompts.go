package gemini

// DeforestationPrompt asks for an EUDR deforestation assessment of the plots
// in the attached GeoJSON. The cut-off date is the EUDR reference date.
const DeforestationPrompt = `You are a remote-sensing analyst screening production plots for compliance with the EU Deforestation Regulation (EUDR, Regulation (EU) 2023/1115).

## TASK
The attached document is a GeoJSON FeatureCollection (WGS84, longitude/latitude) describing the plots of land where a commodity was produced.
Assess, using your knowledge of global forest cover change datasets (for example Hansen Global Forest Change, JRC Tropical Moist Forest, GLAD alerts), whether any part of these plots is likely to have been deforested or degraded after the cut-off date 2020-12-31.

## RULES
1. Output ONLY valid JSON matching the schema below - no markdown, no explanations, no preamble
2. When the evidence is inconclusive, answer conservatively with "deforestation_detected": true
3. Your response must start with { and end with }

## OUTPUT SCHEMA
{
  "deforestation_detected": boolean,
  "confidence": number between 0 and 1,
  "reason": short string
}
`
