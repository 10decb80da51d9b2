package logging

// NopLogger discards everything. Handy in tests and as a default when
// a component is wired without logging.
type NopLogger struct{}

func NewNopLogger() *NopLogger { return &NopLogger{} }

func (NopLogger) Init() {}

func (NopLogger) Debug(Category, SubCategory, string, map[ExtraKey]any) {}
func (NopLogger) Debugf(string, ...any)                                 {}
func (NopLogger) Info(Category, SubCategory, string, map[ExtraKey]any)  {}
func (NopLogger) Infof(string, ...any)                                  {}
func (NopLogger) Warn(Category, SubCategory, string, map[ExtraKey]any)  {}
func (NopLogger) Warnf(string, ...any)                                  {}
func (NopLogger) Error(Category, SubCategory, string, map[ExtraKey]any) {}
func (NopLogger) Errorf(string, ...any)                                 {}
func (NopLogger) Fatal(Category, SubCategory, string, map[ExtraKey]any) {}
func (NopLogger) Fatalf(string, ...any)                                 {}
