package pipeline

// Topics builds every bus topic the agent uses from a namespace prefix and a
// host name, e.g. "diy/raspberrypi/cpu" and "diy/system/fire".
type Topics struct {
	Prefix string
	Host   string
}

func (t Topics) CPU() string        { return t.hostTopic("cpu") }
func (t Topics) CPUCelsius() string { return t.hostTopic("cpucelsius") }
func (t Topics) Disk() string       { return t.hostTopic("disk") }
func (t Topics) OS() string         { return t.hostTopic("os") }
func (t Topics) Pi() string         { return t.hostTopic("pi") }

// Control is the broadcast topic for a control action.
func (t Topics) Control(c ControlTopic) string {
	return t.Prefix + "/system/" + c.String()
}

func (t Topics) hostTopic(metric string) string {
	return t.Prefix + "/" + t.Host + "/" + metric
}
