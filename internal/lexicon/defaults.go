package lexicon

// Default returns the built-in lexicons shipped with the service. Tenant
// databases can extend these with lexicon_entries rows merged on top.
func Default() *Store {
	s := NewStore()

	// generic, english
	for phrase, weight := range map[string]float64{
		"emergency":   0.9,
		"urgent":      0.7,
		"right away":  0.5,
		"immediately": 0.5,
		"dangerous":   0.8,
		"fire":        1.0,
		"help":        0.3,
		"flooding":    0.9,
	} {
		s.AddEntry("generic", "en", phrase, weight)
	}

	// generic, spanish
	for phrase, weight := range map[string]float64{
		"emergencia": 0.9,
		"urgente":    0.7,
		"ahora mismo": 0.5,
		"peligroso":  0.8,
		"incendio":   1.0,
		"ayuda":      0.3,
		"inundación": 0.9,
	} {
		s.AddEntry("generic", "es", phrase, weight)
	}

	// hvac
	for phrase, weight := range map[string]float64{
		"no heat":             0.8,
		"freezing":            0.7,
		"gas smell":           1.0,
		"smell gas":           1.0,
		"carbon monoxide":     1.2,
		"no air conditioning": 0.6,
		"furnace not working": 0.7,
	} {
		s.AddEntry("hvac", "en", phrase, weight)
	}
	for phrase, weight := range map[string]float64{
		"sin calefacción":     0.8,
		"congelando":          0.7,
		"olor a gas":          1.0,
		"monóxido de carbono": 1.2,
		"sin aire acondicionado": 0.6,
	} {
		s.AddEntry("hvac", "es", phrase, weight)
	}

	// plumbing
	for phrase, weight := range map[string]float64{
		"burst pipe":       1.0,
		"water everywhere": 0.9,
		"sewage backup":    0.9,
		"no water":         0.7,
		"leaking":          0.5,
	} {
		s.AddEntry("plumbing", "en", phrase, weight)
	}
	for phrase, weight := range map[string]float64{
		"tubería rota":  1.0,
		"agua por todas partes": 0.9,
		"sin agua":      0.7,
		"goteando":      0.5,
	} {
		s.AddEntry("plumbing", "es", phrase, weight)
	}

	// electrical
	for phrase, weight := range map[string]float64{
		"sparks":        1.0,
		"burning smell": 1.0,
		"exposed wires": 0.9,
		"no power":      0.7,
		"breaker keeps tripping": 0.4,
	} {
		s.AddEntry("electrical", "en", phrase, weight)
	}
	for phrase, weight := range map[string]float64{
		"chispas":          1.0,
		"olor a quemado":   1.0,
		"cables expuestos": 0.9,
		"sin luz":          0.7,
	} {
		s.AddEntry("electrical", "es", phrase, weight)
	}

	// property management
	for phrase, weight := range map[string]float64{
		"break in":   0.9,
		"locked out": 0.6,
		"no heat":    0.6,
		"gas smell":  0.7,
		"elevator stuck": 0.8,
	} {
		s.AddEntry("property_management", "en", phrase, weight)
	}
	for phrase, weight := range map[string]float64{
		"robo":           0.9,
		"cerrado fuera":  0.6,
		"ascensor atascado": 0.8,
	} {
		s.AddEntry("property_management", "es", phrase, weight)
	}

	// A gas smell is a drop-everything call for HVAC crews; for property
	// managers it routes to the utility first.
	s.AddIndustryBoost("hvac", "gas smell", 1.5)
	s.AddIndustryBoost("hvac", "smell gas", 1.5)
	s.AddIndustryBoost("hvac", "olor a gas", 1.5)
	s.AddIndustryBoost("hvac", "carbon monoxide", 1.5)
	s.AddIndustryBoost("hvac", "monóxido de carbono", 1.5)
	s.AddIndustryBoost("plumbing", "flooding", 1.3)
	s.AddIndustryBoost("plumbing", "inundación", 1.3)
	s.AddIndustryBoost("electrical", "fire", 1.4)
	s.AddIndustryBoost("electrical", "incendio", 1.4)

	s.AddCulturalMarker("en", "as soon as possible", 1.1)
	s.AddCulturalMarker("en", "can't wait", 1.15)
	s.AddCulturalMarker("es", "se lo ruego", 1.2)
	s.AddCulturalMarker("es", "cuanto antes", 1.15)
	s.AddCulturalMarker("es", "por el amor de dios", 1.25)

	return s
}
