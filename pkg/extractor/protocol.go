package extractor

// ProtocolInfo is the acquisition bookkeeping block: what sequence ran, on
// which machine, by whom. Every field defaults to the empty string when the
// source key is absent.
type ProtocolInfo struct {
	PulseProgram    string
	Protocol        string
	ScanName        string
	ScanMethod      string
	Software        string
	Institution     string
	Device          string
	Nucleus         string
	SubjectPosition string
	Operator        string
	Warns           []string
}

// NewProtocol reads the protocol block from acqp, with the software version
// taken from visu_pars when present. A missing acqp table is a warning, not
// a failure: every field stays at its default.
func NewProtocol(p Pars) *ProtocolInfo {
	info := &ProtocolInfo{}
	if p.Acqp == nil {
		warn(&info.Warns, "protocol", "acqp not provided, protocol info unavailable")
		return info
	}
	str := func(key string) string {
		s, _ := toString(p.Acqp.Get(key))
		return s
	}
	info.PulseProgram = str("PULPROG")
	info.Protocol = str("ACQ_protocol_name")
	info.ScanName = str("ACQ_scan_name")
	info.ScanMethod = str("ACQ_method")
	info.Institution = str("ACQ_institution")
	info.Device = str("ACQ_station")
	info.Nucleus = firstString(p.Acqp.Get("NUCLEUS"))
	info.SubjectPosition = str("ACQ_patient_pos")
	info.Operator = str("ACQ_operator")

	if s, ok := toString(get(p.VisuPars, "VisuCreatorVersion")); ok {
		info.Software = s
	} else {
		info.Software = str("ACQ_sw_version")
	}
	return info
}

// firstString returns the value itself when it is a string, or the first
// string element of a list. NUCLEUS is declared per channel; the first
// channel names the imaging nucleus.
func firstString(v any) string {
	if s, ok := toString(v); ok {
		return s
	}
	if ss := toStrings(v); len(ss) > 0 {
		return ss[0]
	}
	return ""
}
