package usecase

import (
	"errors"
	"fmt"
	"io"
	"time"

	"advisorvoice/internal/domain"
	"advisorvoice/internal/ports"
)

// pumpAudioChunks copies microphone audio into the provider stream until
// capture ends. A clean EOF is the normal end of a session. A send or read
// failure is reported to the UI as an audio-stream error and handed to fail,
// which keeps the first failure as the session's terminal error; the
// recognition kind attached by the microphone (permission denied, for one)
// survives the hand-off. done is closed when the pump returns so the
// controller can drain the stream after capture stops.
func pumpAudioChunks(
	audio ports.AudioSession,
	stream ports.StreamingSession,
	chunkSize int,
	events ports.EventSink,
	fail func(error),
	done chan struct{},
) {
	defer close(done)

	if chunkSize < 256 {
		chunkSize = 4096
	}

	buf := make([]byte, chunkSize)
	for {
		n, err := audio.Read(buf)
		if n > 0 {
			if sendErr := stream.SendAudio(buf[:n]); sendErr != nil {
				events.SessionError(domain.ErrorCodeAudioStream, fmt.Sprintf("failed to stream audio: %v", sendErr))
				fail(sendErr)
				return
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				events.SessionError(domain.ErrorCodeAudioStream, fmt.Sprintf("audio capture error: %v", err))
				fail(err)
			}
			return
		}
	}
}

// waitForStream waits for the provider to flush its last results after
// CloseSend. Past timeout the session is closed outright and its close error
// returned.
func waitForStream(session ports.StreamingSession, timeout time.Duration) error {
	done := make(chan error, 1)
	go func() {
		done <- session.Wait()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(timeout):
		_ = session.Close()
		return <-done
	}
}
