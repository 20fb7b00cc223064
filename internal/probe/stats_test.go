package probe

import "testing"

func TestParseStats(t *testing.T) {
	cases := []struct {
		name     string
		out      string
		nilWant  bool
		recv     int
		loss     float64
		min, max float64
	}{
		{name: "linux", out: linuxOutput, recv: 4, loss: 0, min: 10.123, max: 12.789},
		{
			name: "macos",
			out: "4 packets transmitted, 3 packets received, 25.0% packet loss\n" +
				"round-trip min/avg/max/stddev = 14.1/15.2/16.3/0.8 ms\n",
			recv: 3, loss: 25, min: 14.1, max: 16.3,
		},
		{
			name: "busybox",
			out: "2 packets transmitted, 2 packets received, 0% packet loss\n" +
				"round-trip min/avg/max = 0.058/0.068/0.085 ms\n",
			recv: 2, loss: 0, min: 0.058, max: 0.085,
		},
		{
			name: "loss only",
			out:  "4 packets transmitted, 0 received, +4 errors, 100% packet loss, time 3003ms\n",
			recv: 0, loss: 100,
		},
		{name: "nothing", out: "ping: unknown host\n", nilWant: true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			st := ParseStats(c.out)
			if c.nilWant {
				if st != nil {
					t.Fatalf("want nil, got %+v", st)
				}
				return
			}
			if st == nil {
				t.Fatalf("want stats, got nil")
			}
			if st.Received != c.recv || st.LossPercent != c.loss || st.MinMS != c.min || st.MaxMS != c.max {
				t.Fatalf("unexpected stats %+v", st)
			}
		})
	}
}
