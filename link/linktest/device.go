// Package linktest holds a test suite shared by link.Device implementations.
package linktest

import (
	"dnet/link"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/goleak"
)

// DeviceTestSuite exercises a connected pair of devices. Embedders set D1 and
// D2 in their SetupTest after calling this one.
type DeviceTestSuite struct {
	suite.Suite
	D1, D2 link.Device
	Clock  clock.Clock

	done  chan struct{}
	timer *time.Timer
}

func (s *DeviceTestSuite) SetupTest() {
	s.done = make(chan struct{})
	s.Clock = clock.New()

	s.timer = time.AfterFunc(time.Second, func() {
		select {
		case <-s.done:
		default:
			s.FailNow("timeout exceeded")
		}
	})
}

func (s *DeviceTestSuite) TearDownTest() {
	defer goleak.VerifyNone(s.T())
	s.NoError(s.D1.Close())
	s.NoError(s.D2.Close())
	close(s.done)
	s.timer.Stop()
}

func (s *DeviceTestSuite) TestSendRecv() {
	frames := [][]byte{[]byte("first frame"), []byte("second")}

	var wg sync.WaitGroup
	defer wg.Wait()
	wg.Add(2)

	go func() {
		defer wg.Done()
		for _, f := range frames {
			n, err := s.D1.Send(f)
			s.Require().NoError(err)
			s.Equal(len(f), n)
		}
	}()
	go func() {
		defer wg.Done()
		buf := make([]byte, 64)
		for _, f := range frames {
			n, err := s.D2.Recv(buf)
			s.Require().NoError(err)
			s.Equal(f, buf[:n])
		}
	}()
}

func (s *DeviceTestSuite) TestRecvTruncates() {
	var wg sync.WaitGroup
	defer wg.Wait()
	wg.Add(1)

	go func() {
		defer wg.Done()
		n, err := s.D1.Send([]byte("0123456789"))
		s.Require().NoError(err)
		s.Equal(4, n)
	}()

	buf := make([]byte, 4)
	n, err := s.D2.Recv(buf)
	s.Require().NoError(err)
	s.Equal([]byte("0123"), buf[:n])
}

func (s *DeviceTestSuite) TestSendRace() {
	frame := []byte("ABCD")
	N := 10

	var wg sync.WaitGroup
	defer wg.Wait()

	wg.Add(1)
	go func() {
		defer wg.Done()
		count := 0

		b := make([]byte, 10)
		for {
			n, err := s.D2.Recv(b)
			if err != nil {
				s.Require().ErrorIs(err, link.ErrDeviceClosed)
				s.Equal(N, count)
				return
			}
			s.Equal(frame, b[:n])
			count++
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		var swg sync.WaitGroup
		for range N {
			swg.Add(1)
			go func() {
				defer swg.Done()
				n, err := s.D1.Send(frame)
				s.Require().NoError(err)
				s.Equal(len(frame), n)
			}()
		}
		swg.Wait()
		s.Require().NoError(s.D1.Close())
	}()
}

func (s *DeviceTestSuite) TestClose() {
	trySendRecv := func(d link.Device) {
		buf := make([]byte, 10)

		n, err := d.Recv(buf)
		s.Require().ErrorIs(err, link.ErrDeviceClosed)
		s.Zero(n)

		n, err = d.Send(buf)
		s.Require().ErrorIs(err, link.ErrDeviceClosed)
		s.Zero(n)
	}

	s.Require().NoError(s.D1.Close())
	trySendRecv(s.D1)
	trySendRecv(s.D2)
}

func (s *DeviceTestSuite) TestRecvBeforeClose() {
	var wg sync.WaitGroup
	defer wg.Wait()

	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := s.D1.Recv(nil)
		s.ErrorIs(err, link.ErrDeviceClosed)
	}()

	time.Sleep(50 * time.Millisecond)
	s.Require().NoError(s.D1.Close())
}

func (s *DeviceTestSuite) TestSendBeforeClose() {
	var wg sync.WaitGroup
	defer wg.Wait()

	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := s.D1.Send([]byte("hey"))
		s.ErrorIs(err, link.ErrDeviceClosed)
	}()

	time.Sleep(50 * time.Millisecond)
	s.Require().NoError(s.D1.Close())
}

func (s *DeviceTestSuite) TestReadDeadLine() {
	s.D1.SetReadDeadLine(s.Clock.Now().Add(-time.Second))

	b := make([]byte, 1)
	n, err := s.D1.Recv(b)
	s.ErrorIs(err, link.ErrDeadLineExceeded)
	s.Zero(n)
}

func (s *DeviceTestSuite) TestWriteDeadLine() {
	s.D1.SetWriteDeadLine(s.Clock.Now().Add(-time.Second))

	n, err := s.D1.Send([]byte{1})
	s.ErrorIs(err, link.ErrDeadLineExceeded)
	s.Zero(n)
}

func (s *DeviceTestSuite) TestDeadLineReset() {
	s.D1.SetReadDeadLine(s.Clock.Now().Add(-time.Second))
	_, err := s.D1.Recv(make([]byte, 1))
	s.Require().ErrorIs(err, link.ErrDeadLineExceeded)

	s.D1.SetReadDeadLine(time.Time{})

	var wg sync.WaitGroup
	defer wg.Wait()
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := s.D2.Send([]byte{1})
		s.NoError(err)
	}()

	n, err := s.D1.Recv(make([]byte, 1))
	s.NoError(err)
	s.Equal(1, n)
}
