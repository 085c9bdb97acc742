package repository

// ChannelRepository is the channel-backed Operations[K,V] implementation:
// every call is marshaled into a Query and sent to a single owner
// goroutine (started by NewChannelRepository), which holds the actual map and answers over a
// private response channel.
type ChannelRepository[K comparable, V any] struct {
	requests chan request[K, V]
}

type request[K comparable, V any] struct {
	query    Query[K, V]
	response chan QueryAnswer[K, V]
}

// NewChannelRepository starts the owner goroutine and returns a repository
// handle bound to it. The owner goroutine runs until the returned stop
// function is called.
func NewChannelRepository[K comparable, V any]() (*ChannelRepository[K, V], func()) {
	cr := &ChannelRepository[K, V]{requests: make(chan request[K, V])}
	done := make(chan struct{})
	go cr.run(done)
	return cr, func() { close(done) }
}

func (cr *ChannelRepository[K, V]) run(done chan struct{}) {
	data := make(map[K]V)
	for {
		select {
		case <-done:
			return
		case req := <-cr.requests:
			req.response <- cr.answer(data, req.query)
		}
	}
}

func (cr *ChannelRepository[K, V]) answer(data map[K]V, q Query[K, V]) QueryAnswer[K, V] {
	switch q.Option {
	case OptSearch:
		v, ok := data[q.Key]
		if !ok {
			return QueryAnswer[K, V]{Option: OptSearch, Err: ErrNotFound}
		}
		return QueryAnswer[K, V]{Option: OptSearch, Value: v}
	case OptAdd:
		if _, exists := data[q.Key]; exists {
			return QueryAnswer[K, V]{Option: OptAdd, Err: ErrAlreadyExists}
		}
		data[q.Key] = q.Value
		return QueryAnswer[K, V]{Option: OptAdd, Value: q.Value}
	case OptDelete:
		_, ok := data[q.Key]
		delete(data, q.Key)
		if !ok {
			return QueryAnswer[K, V]{Option: OptDelete, Err: ErrNotFound}
		}
		return QueryAnswer[K, V]{Option: OptDelete}
	case OptUpdate:
		_, ok := data[q.Key]
		if !ok {
			return QueryAnswer[K, V]{Option: OptUpdate, Err: ErrNotFound}
		}
		data[q.Key] = q.Value
		return QueryAnswer[K, V]{Option: OptUpdate, Value: q.Value}
	case OptFindAll:
		all := make(map[K]V, len(data))
		for k, v := range data {
			all[k] = v
		}
		return QueryAnswer[K, V]{Option: OptFindAll, All: all}
	default:
		return QueryAnswer[K, V]{Option: q.Option, Err: ErrBadQuery}
	}
}

// sendAndReceive is the Go analog of client_channel.rs's send_and_receive:
// it blocks until the owner goroutine answers, then validates the answer's
// variant matches the query's.
func (cr *ChannelRepository[K, V]) sendAndReceive(q Query[K, V]) (QueryAnswer[K, V], error) {
	resp := make(chan QueryAnswer[K, V], 1)
	cr.requests <- request[K, V]{query: q, response: resp}
	a := <-resp
	if err := validateResponse(q, a); err != nil {
		return a, err
	}
	return a, nil
}

func (cr *ChannelRepository[K, V]) Search(key K) (V, error) {
	a, err := cr.sendAndReceive(Query[K, V]{Option: OptSearch, Key: key})
	if err != nil {
		return a.Value, err
	}
	return a.Value, a.Err
}

func (cr *ChannelRepository[K, V]) Add(key K, value V) error {
	a, err := cr.sendAndReceive(Query[K, V]{Option: OptAdd, Key: key, Value: value})
	if err != nil {
		return err
	}
	return a.Err
}

func (cr *ChannelRepository[K, V]) Delete(key K) error {
	a, err := cr.sendAndReceive(Query[K, V]{Option: OptDelete, Key: key})
	if err != nil {
		return err
	}
	return a.Err
}

func (cr *ChannelRepository[K, V]) Update(key K, value V) error {
	a, err := cr.sendAndReceive(Query[K, V]{Option: OptUpdate, Key: key, Value: value})
	if err != nil {
		return err
	}
	return a.Err
}

func (cr *ChannelRepository[K, V]) FindAll() (map[K]V, error) {
	a, err := cr.sendAndReceive(Query[K, V]{Option: OptFindAll})
	if err != nil {
		return nil, err
	}
	return a.All, a.Err
}

var _ Operations[string, int] = (*ChannelRepository[string, int])(nil)
