package pipeline

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hazemdh/leadbot-go/internal/bundle"
	"github.com/hazemdh/leadbot-go/internal/config"
	"github.com/hazemdh/leadbot-go/internal/corpus"
	"github.com/hazemdh/leadbot-go/internal/logger"
	"github.com/hazemdh/leadbot-go/internal/record"
)

const conversationsCSV = `conversation_id,start_time,end_time,contact_id,assignee_id,incoming_messages,outgoing_messages,last_reply_time,status,summary,last_assignee_id,first_reply_time,total_handling_time,recipient_id
V1,2024-03-15 10:30:00,2024-03-15 10:40:00,C1,A1,2,2,2024-03-15 10:39:00,interested,demande infos,A1,2024-03-15 10:31:00,600,R1
V2,2024-03-16 09:00:00,2024-03-16 09:05:00,C2,A1,1,1,2024-03-16 09:04:00,not_interested,refus,A1,2024-03-16 09:01:00,300,R1
`

const messagesCSV = `timestamp,conversation_id,sender_type,sender_id,message_id,message_type,direction,payload,recipient_id
2024-03-15 10:30:00,V1,contact,C1,M1,text,in,"{""type"":""text"",""text"":{""text"":""salut""}}",R1
2024-03-15 10:31:00,V1,user,C1,M2,text,out,"{""type"":""text"",""text"":{""text"":""ahla, kifech nrajou najem n3awnek""}}",R1
2024-03-16 09:00:00,V2,contact,C2,M3,text,in,"{""type"":""text"",""text"":{""text"":""non merci""}}",R1
2024-03-16 09:01:00,V2,user,C2,,text,out,"{""type"":""text"",""text"":{""text"":""dropped, no id""}}",R1
`

const contactsCSV = `ContactID,FirstName,LastName,PhoneNumber,Email,Country,Language,Tags,Status,Lifecycle,Assignee,LastInteractionTime,DateTimeCreated,Channels,Lead Source,State,Moyenne Bac,Last Degree,Graduation Year,Current Degree,Degree Sought,Degree Choice,Scholarship,University,Qualifying URL,Eligible,Qualifying Score
C1,Ahmed,B,216000,a@b.tn,TN,fr,,open,lead,A1,2024-03-15 10:39:00,2024-03-01 08:00:00,whatsapp,fb,Tunis,14,bac,2023,licence,master,info,non,X,,oui,80
`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{
		DataDir:           t.TempDir(),
		ChatbotAlgorithm:  config.AlgorithmNaiveBayes,
		GenMaxRetries:     1,
		AugmentTarget:     4,
		AugmentBatchSize:  2,
		AugmentSampleSize: 2,
		CleanBatchSize:    5,
	}
	require.NoError(t, cfg.EnsureDirs())
	return cfg
}

func writeRawSources(t *testing.T, cfg *config.Config) {
	t.Helper()
	require.NoError(t, os.WriteFile(cfg.ContactsCSV(), []byte(contactsCSV), 0o644))
	require.NoError(t, os.WriteFile(cfg.ConversationsCSV(), []byte(conversationsCSV), 0o644))
	require.NoError(t, os.WriteFile(cfg.MessagesCSV(), []byte(messagesCSV), 0o644))
}

func newPipeline(cfg *config.Config) *Pipeline {
	return New(cfg, logger.NewWithWriter("error", io.Discard), nil, nil)
}

func TestCleanAll(t *testing.T) {
	cfg := testConfig(t)
	writeRawSources(t, cfg)
	p := newPipeline(cfg)

	for _, err := range p.CleanAll(context.Background()) {
		require.NoError(t, err)
	}

	var conversations []record.Record
	require.NoError(t, corpus.ReadJSON(cfg.ConversationsClean(), &conversations))
	require.Len(t, conversations, 3, "header row plus two data rows")
	assert.Equal(t, "conversation_id", conversations[0]["conversation_id"])
	assert.Equal(t, "2024-03-15T10:30:00", conversations[1]["start_time"])

	var messages []record.Record
	require.NoError(t, corpus.ReadJSON(cfg.MessagesClean(), &messages))
	require.Len(t, messages, 4, "row without message_id is dropped")
	assert.Equal(t, "salut", messages[1]["text"])
}

func TestCleanAllSkipsMissingSources(t *testing.T) {
	cfg := testConfig(t)
	// Only messages present.
	require.NoError(t, os.WriteFile(cfg.MessagesCSV(), []byte(messagesCSV), 0o644))
	p := newPipeline(cfg)

	for _, err := range p.CleanAll(context.Background()) {
		assert.NoError(t, err, "missing raw sources are a skip, not a failure")
	}
	_, err := os.Stat(cfg.MessagesClean())
	assert.NoError(t, err)
	_, err = os.Stat(cfg.ContactsClean())
	assert.True(t, os.IsNotExist(err))
}

func TestMergeAndPrepare(t *testing.T) {
	cfg := testConfig(t)
	writeRawSources(t, cfg)
	p := newPipeline(cfg)
	ctx := context.Background()

	for _, err := range p.CleanAll(ctx) {
		require.NoError(t, err)
	}
	require.NoError(t, p.runStage(ctx, StageMergeData, p.MergeData))
	require.NoError(t, p.runStage(ctx, StagePrepareTraining, p.PrepareTrainingDataset))

	c, err := corpus.Load(cfg.TrainingDataset())
	require.NoError(t, err)
	require.Len(t, c, 2)

	assert.Equal(t, "V1", c[0].ConversationID)
	assert.Equal(t, "interested", c[0].Status)
	require.Len(t, c[0].Messages, 2)
	assert.Equal(t, corpus.Message{
		Timestamp:  "2024-03-15T10:30:00",
		SenderType: "contact",
		Text:       "salut",
	}, c[0].Messages[0])
	assert.Equal(t, "ahla, kifech nrajou najem n3awnek", c[0].Messages[1].Text)
}

func TestTrainProducesBundle(t *testing.T) {
	cfg := testConfig(t)
	p := newPipeline(cfg)

	// Enough conversations for a meaningful split.
	var c corpus.Corpus
	for i := 0; i < 6; i++ {
		c = append(c,
			corpus.Conversation{Status: "interested", Messages: []corpus.Message{
				{SenderType: corpus.SenderContact, Text: "behi n7eb nsajel fel formation"},
			}},
			corpus.Conversation{Status: "not_interested", Messages: []corpus.Message{
				{SenderType: corpus.SenderContact, Text: "non merci mouch interesse"},
			}},
		)
	}
	require.NoError(t, corpus.Save(cfg.TrainingDataset(), c))

	require.NoError(t, p.Train(context.Background(), []string{config.AlgorithmNaiveBayes}))

	b, err := bundle.Load(cfg.ModelDir(), config.AlgorithmNaiveBayes)
	require.NoError(t, err)
	label, err := b.Classify("behi n7eb nsajel")
	require.NoError(t, err)
	assert.Equal(t, "interested", label)
}

func TestLoadTrainingCorpusPrefersCleaned(t *testing.T) {
	cfg := testConfig(t)
	p := newPipeline(cfg)

	real := corpus.Corpus{{Status: "interested", Summary: "real", Messages: []corpus.Message{{SenderType: "contact", Text: "salut"}}}}
	synthetic := corpus.Corpus{{Status: "interested", Summary: "synthetic", Messages: []corpus.Message{{SenderType: "contact", Text: "ahla"}}}}
	require.NoError(t, corpus.Save(cfg.TrainingDataset(), real))
	require.NoError(t, corpus.Save(cfg.SyntheticConversations(), synthetic))

	got, err := p.LoadTrainingCorpus()
	require.NoError(t, err)
	assert.Len(t, got, 2, "real plus synthetic when no cleaned artifact exists")

	cleaned := corpus.Corpus{{Status: "interested", Summary: "cleaned", Messages: []corpus.Message{{SenderType: "contact", Text: "salut"}}}}
	require.NoError(t, corpus.Save(cfg.CleanedTrainingData(), cleaned))

	got, err = p.LoadTrainingCorpus()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "cleaned", got[0].Summary)
}

// scriptedGenerator returns canned conversations for the synthetic
// stages.
type scriptedGenerator struct {
	fail bool
}

func (s *scriptedGenerator) Provider() string { return "scripted" }

func (s *scriptedGenerator) GenerateConversations(context.Context, string, string) ([]corpus.Conversation, error) {
	if s.fail {
		return nil, errors.New("provider down")
	}
	return []corpus.Conversation{
		{Status: "interested", Summary: "synthetic", Messages: []corpus.Message{
			{SenderType: corpus.SenderContact, Text: "salut"},
			{SenderType: corpus.SenderUser, Text: "ahla"},
		}},
		{Status: "interested", Summary: "synthetic", Messages: []corpus.Message{
			{SenderType: corpus.SenderContact, Text: "behi"},
			{SenderType: corpus.SenderUser, Text: "yaatik saha"},
		}},
	}, nil
}

func TestGenerateSyntheticData(t *testing.T) {
	cfg := testConfig(t)
	real := corpus.Corpus{{Status: "interested", Messages: []corpus.Message{{SenderType: "contact", Text: "behi"}}}}
	require.NoError(t, corpus.Save(cfg.TrainingDataset(), real))

	p := New(cfg, logger.NewWithWriter("error", io.Discard), nil, &scriptedGenerator{})
	require.NoError(t, p.GenerateSyntheticData(context.Background()))

	synthetic, err := corpus.Load(cfg.SyntheticConversations())
	require.NoError(t, err)
	assert.Len(t, synthetic, cfg.AugmentTarget)
}

func TestRunHonorsAutoFlags(t *testing.T) {
	cfg := testConfig(t)
	writeRawSources(t, cfg)
	cfg.AutoCleanData = true
	cfg.AutoMergeData = true
	cfg.AutoPrepareTrainingDataset = true

	p := newPipeline(cfg)
	require.NoError(t, p.Run(context.Background()))

	_, err := os.Stat(cfg.TrainingDataset())
	assert.NoError(t, err)
	// Training was not enabled.
	entries, _ := os.ReadDir(cfg.ModelDir())
	assert.Empty(t, entries)
}

func TestRunCollectsStageErrors(t *testing.T) {
	cfg := testConfig(t)
	cfg.AutoMergeData = true

	// Corrupt source artifact: merge must fail, not skip.
	require.NoError(t, os.MkdirAll(filepath.Dir(cfg.ConversationsClean()), 0o755))
	require.NoError(t, os.WriteFile(cfg.ConversationsClean(), []byte("not json"), 0o644))

	p := newPipeline(cfg)
	err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), StageMergeData)
}
