package logstore

// applicationMagic is the fixed application-id metadata stamped into every log file,
// used to reject files that are not this format.
const applicationMagic = 0x47504C47

const (
	schemaVersionRecording = 1
	schemaVersionAnalysis  = 2
)

// commonTables creates the dictionary tables shared by both schema variants. Indices are
// created separately (see commonIndices), after the schema-specific tables; Create takes
// no initial batch, so they follow the tables immediately.
const commonTables = `
CREATE TABLE IF NOT EXISTS processes (
    id   INTEGER PRIMARY KEY,
    name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS applications (
    id   INTEGER PRIMARY KEY,
    name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS writers (
    id   INTEGER PRIMARY KEY,
    name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS levels (
    id   INTEGER PRIMARY KEY,
    name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS tags (
    id   INTEGER PRIMARY KEY,
    name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS tag2msg (
    id          INTEGER PRIMARY KEY,
    tag_id      INTEGER NOT NULL,
    message_id  INTEGER NOT NULL
);
`

const commonIndices = `
CREATE UNIQUE INDEX IF NOT EXISTS ix_processes_name ON processes(name);
CREATE UNIQUE INDEX IF NOT EXISTS ix_applications_name ON applications(name);
CREATE UNIQUE INDEX IF NOT EXISTS ix_writers_name ON writers(name);
CREATE UNIQUE INDEX IF NOT EXISTS ix_levels_name ON levels(name);
CREATE UNIQUE INDEX IF NOT EXISTS ix_tags_name ON tags(name);
CREATE INDEX IF NOT EXISTS ix_tag2msg_tag_id ON tag2msg(tag_id);
CREATE INDEX IF NOT EXISTS ix_tag2msg_message_id ON tag2msg(message_id);
`

// recordingTables is the write-optimized schema (version 1): text stored inline.
const recordingTables = `
CREATE TABLE IF NOT EXISTS messages (
    id                        INTEGER PRIMARY KEY,
    timestamp                 INTEGER NOT NULL,
    timezone_offset           INTEGER NOT NULL,
    high_precision_timestamp  INTEGER NOT NULL,
    lost_message_count        INTEGER NOT NULL,
    process_id                INTEGER NOT NULL,
    process_name_id           INTEGER NOT NULL,
    application_name_id       INTEGER NOT NULL,
    writer_name_id            INTEGER NOT NULL,
    level_name_id             INTEGER NOT NULL,
    has_tags                  INTEGER NOT NULL,
    text                      TEXT NOT NULL
);
`

const recordingIndices = `
CREATE INDEX IF NOT EXISTS ix_messages_timestamp ON messages(timestamp);
`

// analysisTables is the read-optimized schema (version 2): text lives in a separate
// 1:1 table, and messages carry richer secondary indices.
const analysisTables = `
CREATE TABLE IF NOT EXISTS messages (
    id                        INTEGER PRIMARY KEY,
    timestamp                 INTEGER NOT NULL,
    timezone_offset           INTEGER NOT NULL,
    high_precision_timestamp  INTEGER NOT NULL,
    lost_message_count        INTEGER NOT NULL,
    process_id                INTEGER NOT NULL,
    process_name_id           INTEGER NOT NULL,
    application_name_id       INTEGER NOT NULL,
    writer_name_id            INTEGER NOT NULL,
    level_name_id             INTEGER NOT NULL,
    has_tags                  INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS texts (
    id   INTEGER PRIMARY KEY,
    text TEXT NOT NULL
);
`

const analysisIndices = `
CREATE INDEX IF NOT EXISTS ix_messages_timestamp ON messages(timestamp);
CREATE INDEX IF NOT EXISTS ix_messages_process_id ON messages(process_id);
CREATE INDEX IF NOT EXISTS ix_messages_process_name_id ON messages(process_name_id);
CREATE INDEX IF NOT EXISTS ix_messages_application_name_id ON messages(application_name_id);
CREATE INDEX IF NOT EXISTS ix_messages_writer_name_id ON messages(writer_name_id);
CREATE INDEX IF NOT EXISTS ix_messages_level_name_id ON messages(level_name_id);
`
