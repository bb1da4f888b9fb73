package logger

const mailboxSlots = 32

// mailbox is a fixed ring of log lines.
type mailbox struct {
	head  uint8
	tail  uint8
	slots [mailboxSlots][]byte
}

func (mb *mailbox) push(line []byte) bool {
	if mb.head-mb.tail >= mailboxSlots {
		return false
	}
	i := mb.head % mailboxSlots
	mb.slots[i] = append(mb.slots[i][:0], line...)
	mb.head++
	return true
}

// pop returns the oldest line. It stays valid until the slot is reused.
func (mb *mailbox) pop() ([]byte, bool) {
	if mb.tail == mb.head {
		return nil, false
	}
	line := mb.slots[mb.tail%mailboxSlots]
	mb.tail++
	return line, true
}

func (mb *mailbox) len() int {
	return int(mb.head - mb.tail)
}
