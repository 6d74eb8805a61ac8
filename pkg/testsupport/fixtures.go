package testsupport

// Envelopes shaped like the intake API responses.
const (
	// CompQCEnvelope lists one new vehicle and one re-rent vehicle.
	CompQCEnvelope = `{
  "list": [
    {"ASSETNO": "A-100", "CARNO": "12가3456", "CNAME": "홍길동", "INRSON": "반납", "GUBUN": "신차", "CHADAENO": "KMH0001", "MODEL": "아반떼", "MILEAGE": 31704},
    {"ASSETNO": "A-200", "CARNO": "34나7890", "CNAME": "김철수", "INRSON": "사고", "GUBUN": "재렌트", "CHADAENO": "KMH0002", "MODEL": "쏘나타", "KEYLOCATION": "front desk"}
  ],
  "reqCode": [{"HR58": ["A-1", "B-2"]}]
}`

	// NoLookupEnvelope carries records but no entry location codes.
	NoLookupEnvelope = `{"list": [{"ASSETNO": "A-100", "CARNO": "12가3456"}]}`
)
